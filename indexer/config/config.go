package config

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/config"
)

type Config struct {
	DB         config.DBConfig     `toml:"db"`
	Logger     config.LoggerConfig `toml:"logger"`
	Metrics    MetricsConfig       `toml:"metrics"`
	Chain      config.ChainConfig  `toml:"chain"`
	Ingest     IngestConfig        `toml:"ingest"`
	Scheduler  SchedulerConfig     `toml:"scheduler"`
	Masternode MasternodeConfig    `toml:"masternode"`
}

type MetricsConfig struct {
	PrometheusAddress string `toml:"prometheus_address" envconfig:"METRICS_PROMETHEUS_ADDRESS"`
}

type IngestConfig struct {
	// Blocks persisted per database transaction
	CommitBatchSize int `toml:"commit_batch_size" validate:"min=1"`
	// Blocks ingested by one pipeline run at most
	BlocksPerRun     int    `toml:"blocks_per_run" validate:"min=1"`
	StartBlock       uint32 `toml:"start_block"`
	OutputsCacheSize int    `toml:"outputs_cache_size" validate:"min=0"`
	// Size of the address and token registry caches
	RegistryCacheSize int `toml:"registry_cache_size" validate:"min=0"`
}

type SchedulerConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds" validate:"min=1"`
	// Stop the process after this many failed runs in a row, 0 to never stop
	MaxConsecutiveFailures int `toml:"max_consecutive_failures" validate:"min=0"`
}

type MasternodeConfig struct {
	Enabled bool `toml:"enabled"`
}

func newConfig() *Config {
	return &Config{
		Logger: config.LoggerConfig{
			Level:   "INFO",
			Console: true,
		},
		Chain: config.ChainConfig{
			NodeURL:        "http://localhost:8554/",
			TimeoutSeconds: 180,
		},
		Ingest: IngestConfig{
			CommitBatchSize:   100,
			BlocksPerRun:      10000,
			StartBlock:        0,
			OutputsCacheSize:  10000,
			RegistryCacheSize: 100000,
		},
		Scheduler: SchedulerConfig{
			Enabled:                true,
			IntervalSeconds:        60,
			MaxConsecutiveFailures: 10,
		},
		Masternode: MasternodeConfig{
			Enabled: false,
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

// Default configuration with the given ingest batch sizes, used by tests
func NewTestConfig(commitBatchSize int, blocksPerRun int) *Config {
	cfg := newConfig()
	cfg.Ingest.CommitBatchSize = commitBatchSize
	cfg.Ingest.BlocksPerRun = blocksPerRun
	cfg.Scheduler.Enabled = false
	cfg.Masternode.Enabled = true
	return cfg
}
