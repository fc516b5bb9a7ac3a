package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	TemplatesPath string        `mapstructure:"templates_path"`
	VaultDir      string        `mapstructure:"vault_dir"`
	DBPath        string        `mapstructure:"db_path"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	Secret        string        `mapstructure:"secret"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("templates_path", "./web/templates")
	v.SetDefault("vault_dir", "database/vault")
	v.SetDefault("db_path", "database/context-map.json")
	// Base64 camera frames are large; the limit is per message.
	v.SetDefault("read_limit", 4<<20)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "kiddie_secret_99")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
