package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the engine settings. Every field has a working default so a
// config file is optional.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Fetch struct {
		TimeoutMS int `mapstructure:"timeout_ms"`
		Retries   int `mapstructure:"retries"`
		BackoffMS int `mapstructure:"backoff_ms"`
	} `mapstructure:"fetch"`

	Cache struct {
		TTLMS      int `mapstructure:"ttl_ms"` // 0 disables the cache
		MaxEntries int `mapstructure:"max_entries"`
	} `mapstructure:"cache"`

	S3 struct {
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"s3"`

	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`
}

func DefaultConfig() *Config {
	cfg := &Config{AppName: "tabq"}
	cfg.Fetch.TimeoutMS = 30_000
	cfg.Fetch.Retries = 2
	cfg.Fetch.BackoffMS = 500
	cfg.Cache.TTLMS = 60_000
	cfg.Cache.MaxEntries = 32
	cfg.Server.Addr = ":4866"
	return cfg
}

// LoadConfig reads a yaml config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
