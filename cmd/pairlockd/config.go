package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// serviceConfig is the daemon configuration. Value sources, in descending
// priority: explicit --config path, CONFIG_PATH, ./local.yaml, environment
// variables.
type serviceConfig struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP    httpConfig    `yaml:"http"`
	Redis   redisConfig   `yaml:"redis"`
	Token   tokenConfig   `yaml:"token"`
	Webhook webhookConfig `yaml:"webhook"`
}

type httpConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr returns the address in host:port form.
func (h httpConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type redisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
}

type tokenConfig struct {
	Secret     string        `yaml:"secret" env:"TOKEN_SECRET" env-required:"true"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL" env-default:"720h"`
	Issuer     string        `yaml:"issuer" env:"TOKEN_ISSUER" env-default:"pairlockd"`
}

type webhookConfig struct {
	URL     string        `yaml:"url" env:"WEBHOOK_URL"`
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"5s"`
}

func mustLoadConfig(path string) *serviceConfig {
	cfg, err := loadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func loadConfig(path string) (*serviceConfig, error) {
	var cfg serviceConfig

	tryRead := func(p string) (*serviceConfig, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Environment variables override file values.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}
		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
