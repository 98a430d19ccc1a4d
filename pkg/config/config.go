package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	CartServiceURL    string        `env:"CART_SERVICE_URL" envDefault:"http://localhost:5000/api"`
	ProductServiceURL string        `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:5000/api"`
	RemoteTimeout     time.Duration `env:"REMOTE_TIMEOUT" envDefault:"10s"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`

	LocalStorePath string `env:"LOCAL_STORE_PATH" envDefault:"storefront.db"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
