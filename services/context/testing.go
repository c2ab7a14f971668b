package context

import (
	globalConfig "github.com/LOCKbusiness/transaction-checker-sub000/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"gorm.io/gorm"
)

// Context over an already populated database, typically one filled by the indexer pipeline
func BuildTestContext(cfg *config.Config, db *gorm.DB, client chain.Client) ServicesContext {
	globalConfig.GlobalConfigCallback.Call(cfg)
	return &servicesContext{
		config: cfg,
		db:     db,
		client: client,
	}
}
