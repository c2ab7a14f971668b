package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	CONFIG_FILE       string = "config.toml"
	LOCAL_CONFIG_FILE string = "config.local.toml"
	ENV_FILE          string = ".env"
)

var (
	GlobalConfigCallback ConfigCallback[GlobalConfig] = ConfigCallback[GlobalConfig]{}

	validate = validator.New()
)

type GlobalConfig interface {
	LoggerConfig() LoggerConfig
	ChainConfig() ChainConfig
}

type DBConfig struct {
	Host       string `toml:"host" envconfig:"DB_HOST"`
	Port       int    `toml:"port" envconfig:"DB_PORT"`
	Database   string `toml:"database" envconfig:"DB_DATABASE"`
	Username   string `toml:"username" envconfig:"DB_USERNAME"`
	Password   string `toml:"password" envconfig:"DB_PASSWORD"`
	LogQueries bool   `toml:"log_queries"`
}

type LoggerConfig struct {
	Level   string `toml:"level"` // valid values are: DEBUG, INFO, WARN, ERROR, DPANIC, PANIC, FATAL (zap)
	File    string `toml:"file"`
	Console bool   `toml:"console"`
}

type ChainConfig struct {
	NodeURL        string `toml:"node_url" envconfig:"CHAIN_NODE_URL" validate:"required,url"`
	Username       string `toml:"username" envconfig:"CHAIN_USERNAME"`
	Password       string `toml:"password" envconfig:"CHAIN_PASSWORD"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=0"`
}

// Parse a toml config file into cfg. A missing file is not an error if allowMissing is set.
func ParseConfigFile(cfg interface{}, fileName string, allowMissing bool) error {
	content, err := os.ReadFile(fileName)
	if err != nil {
		if allowMissing && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error opening config file: %w", err)
	}

	_, err = toml.Decode(string(content), cfg)
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

// Read environment overrides; variables from the .env file (if any) are loaded first
// and never override variables already set in the environment.
func ReadEnv(cfg interface{}) error {
	err := godotenv.Load(ENV_FILE)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error reading env file: %w", err)
	}
	err = envconfig.Process("", cfg)
	if err != nil {
		return fmt.Errorf("error reading env config: %w", err)
	}
	return nil
}

func Validate(cfg interface{}) error {
	err := validate.Struct(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
