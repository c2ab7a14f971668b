package context

import (
	globalConfig "github.com/LOCKbusiness/transaction-checker-sub000/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"gorm.io/gorm"
)

type ServicesContext interface {
	Config() *config.Config
	DB() *gorm.DB
	Client() chain.Client
}

type servicesContext struct {
	config *config.Config
	db     *gorm.DB
	client chain.Client
}

func BuildContext() (ServicesContext, error) {
	ctx := servicesContext{}

	cfg, err := config.BuildConfig()
	if err != nil {
		return nil, err
	}
	ctx.config = cfg
	globalConfig.GlobalConfigCallback.Call(cfg)

	ctx.db, err = database.Connect(&cfg.DB)
	if err != nil {
		return nil, err
	}
	ctx.client = chain.NewRPCClient(&cfg.Chain)
	return &ctx, nil
}

func (c *servicesContext) Config() *config.Config { return c.config }

func (c *servicesContext) DB() *gorm.DB { return c.db }

func (c *servicesContext) Client() chain.Client { return c.client }
