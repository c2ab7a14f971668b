package context

import (
	globalConfig "github.com/LOCKbusiness/transaction-checker-sub000/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"gorm.io/gorm"
)

type IndexerContext interface {
	Config() *config.Config
	DB() *gorm.DB
	Client() chain.Client
}

type indexerContext struct {
	config *config.Config
	db     *gorm.DB
	client chain.Client
}

func BuildContext() (IndexerContext, error) {
	ctx := indexerContext{}

	cfg, err := config.BuildConfig()
	if err != nil {
		return nil, err
	}
	ctx.config = cfg
	globalConfig.GlobalConfigCallback.Call(cfg)

	ctx.db, err = database.ConnectAndInitialize(&cfg.DB)
	if err != nil {
		return nil, err
	}
	ctx.client = chain.NewRPCClient(&cfg.Chain)
	return &ctx, nil
}

func (c *indexerContext) Config() *config.Config { return c.config }

func (c *indexerContext) DB() *gorm.DB { return c.db }

func (c *indexerContext) Client() chain.Client { return c.client }
