package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	LogLevel string

	DefaultCurrency string
	DefaultLanguage string

	// Diagnostics backend: "redis", "memory" or "none".
	Diagnostics string
	Redis       RedisConfig

	// Fetch points at the service that retrieves result pages. Search routes
	// are only served when URL is set.
	Fetch FetchConfig
}

type FetchConfig struct {
	URL     string
	Mode    string
	Timeout time.Duration
	Retries int
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Load reads FLIGHTQUERY_* environment variables, optionally layered over a
// config.yaml found in the working directory or configDir. A missing config
// file is not an error.
func Load(configDir string) (Config, error) {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvPrefix("flightquery")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("currency", "USD")
	v.SetDefault("language", "en")
	v.SetDefault("diagnostics", "memory")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "flightquery")
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("fetch.url", "")
	v.SetDefault("fetch.mode", "common")
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.retries", 2)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:            v.GetString("port"),
		LogLevel:        v.GetString("log.level"),
		DefaultCurrency: strings.ToUpper(v.GetString("currency")),
		DefaultLanguage: v.GetString("language"),
		Diagnostics:     strings.ToLower(v.GetString("diagnostics")),
		Redis: RedisConfig{
			Host:      v.GetString("redis.host"),
			Port:      v.GetString("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.prefix"),
			TTL:       v.GetDuration("redis.ttl"),
		},
		Fetch: FetchConfig{
			URL:     v.GetString("fetch.url"),
			Mode:    strings.ToLower(v.GetString("fetch.mode")),
			Timeout: v.GetDuration("fetch.timeout"),
			Retries: v.GetInt("fetch.retries"),
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Diagnostics {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("config: unknown diagnostics backend %q", c.Diagnostics)
	}
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("config: fetch retries %d is negative", c.Fetch.Retries)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("config: currency %q is not a 3-letter code", c.DefaultCurrency)
	}
	return nil
}
