package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration.
// Populated from environment variables.
type Config struct {
	App   AppConfig
	Cart  CartConfig
	Redis RedisConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

// CartConfig selects the persistence backend for cart slots
type CartConfig struct {
	// Backend: "memory", "file" or "redis"
	Backend string

	// FileDir is the root directory for the file backend
	FileDir string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Saloncart API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Cart: CartConfig{
			Backend: getEnv("CART_BACKEND", "memory"),
			FileDir: getEnv("CART_FILE_DIR", "./data/carts"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cart.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid CART_BACKEND %q (expected memory, file or redis)", c.Cart.Backend)
	}

	if c.Cart.Backend == "file" && c.Cart.FileDir == "" {
		return fmt.Errorf("CART_FILE_DIR is required for the file backend")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt reads an integer environment variable with a fallback default
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
