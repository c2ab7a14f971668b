package config

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/config"
)

type Config struct {
	DB       config.DBConfig     `toml:"db"`
	Logger   config.LoggerConfig `toml:"logger"`
	Chain    config.ChainConfig  `toml:"chain"`
	Services ServicesConfig      `toml:"services"`
}

type ServicesConfig struct {
	Address        string `toml:"address" envconfig:"SERVICES_ADDRESS" validate:"required"`
	Swagger        bool   `toml:"swagger"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=1"`
}

func newConfig() *Config {
	return &Config{
		Logger: config.LoggerConfig{
			Level:   "INFO",
			Console: true,
		},
		Chain: config.ChainConfig{
			NodeURL:        "http://localhost:8554/",
			TimeoutSeconds: 30,
		},
		Services: ServicesConfig{
			Address:        "localhost:8000",
			Swagger:        true,
			TimeoutSeconds: 15,
		},
	}
}

func (c Config) LoggerConfig() config.LoggerConfig {
	return c.Logger
}

func (c Config) ChainConfig() config.ChainConfig {
	return c.Chain
}

func BuildConfig() (*Config, error) {
	cfg := newConfig()
	err := config.ParseConfigFile(cfg, config.CONFIG_FILE, false)
	if err != nil {
		return nil, err
	}
	err = config.ParseConfigFile(cfg, config.LOCAL_CONFIG_FILE, true)
	if err != nil {
		return nil, err
	}
	err = config.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}
	err = config.Validate(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewTestConfig() *Config {
	return newConfig()
}
