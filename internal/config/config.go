package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	logLevelDebug = "debug"
	logLevelInfo  = "info"
	logLevelWarn  = "warn"
	logLevelError = "error"
)

type (
	Config struct {
		Host       string `mapstructure:"HOST"`
		Port       string `mapstructure:"PORT"`
		GatewayURL string `mapstructure:"GATEWAY_URL"`
		DBPath     string `mapstructure:"DB_PATH"`
		LogLevel   string `mapstructure:"LOG_LEVEL"`
	}
)

func NewConfig() (*Config, error) {
	viper.SetEnvPrefix("REVISIT")

	viper.SetDefault("HOST", "127.0.0.1")
	viper.SetDefault("PORT", "1323")
	viper.SetDefault("GATEWAY_URL", "https://llmproxy.api.sparkbright.me")
	viper.SetDefault("DB_PATH", "revisit.db")
	viper.SetDefault("LOG_LEVEL", logLevelInfo)

	envs := []string{"HOST", "PORT", "GATEWAY_URL", "DB_PATH", "LOG_LEVEL"}
	for _, key := range envs {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	validLevels := []string{logLevelDebug, logLevelInfo, logLevelWarn, logLevelError}
	for _, validValue := range validLevels {
		if cfg.LogLevel == validValue {
			return nil
		}
	}
	return errors.New(fmt.Sprintf("log level is invalid: %s", cfg.LogLevel))
}
