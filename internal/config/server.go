package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// Comma-separated "account:balance" pairs seeded at startup.
	SeedAccounts string `env:"SEED_ACCOUNTS"`

	JanitorIntervalSecs int `env:"JANITOR_INTERVAL_SECONDS" envDefault:"30"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
