package context

import (
	globalConfig "github.com/LOCKbusiness/transaction-checker-sub000/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/migrations"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"
)

// Context backed by an in-memory database (migrated) and the given chain client
func BuildTestContext(cfg *config.Config, client chain.Client) (IndexerContext, error) {
	ctx := indexerContext{}
	var err error

	ctx.config = cfg
	globalConfig.GlobalConfigCallback.Call(cfg)

	ctx.db, err = database.ConnectAndInitializeTestDB(&cfg.DB)
	if err != nil {
		return nil, err
	}

	err = migrations.Container.ExecuteAll(ctx.db)
	if err != nil {
		return nil, err
	}

	ctx.client = client
	return &ctx, nil
}
