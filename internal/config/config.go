package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-me"

// Config describes all runtime settings for the server.
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string `env:"APP_ENV" envDefault:"dev"` // dev|stage|prod

	Log struct {
		Format string `env:"LOG_FORMAT" envDefault:"text"` // text|json
		Level  string `env:"LOG_LEVEL" envDefault:"info"`  // debug|info|warn|error
	}

	HTTP struct {
		Port              string        `env:"PORT" envDefault:"8080"`
		Addr              string        `env:"HTTP_ADDR"` // defaults to ":"+Port
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
		ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"0s"`
		WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0s"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}

	Redis struct {
		Addr string `env:"REDIS_ADDR"` // empty => in-process event bus
		DB   int    `env:"REDIS_DB" envDefault:"0"`
	}

	Auth struct {
		Secret   string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
		TokenTTL time.Duration `env:"JWT_TTL" envDefault:"24h"`
	}

	Game struct {
		SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
		ClockInterval time.Duration `env:"CLOCK_INTERVAL" envDefault:"1s"`
		MaxRejections int           `env:"SECRET_MAX_REJECTIONS" envDefault:"1000"`
		Seed          uint64        `env:"GAME_SEED" envDefault:"0"`
	}
}

// Load reads an optional .env file, then the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// missing .env is fine; real env wins over file values
		_ = godotenv.Load(f)
	}
	return LoadFromEnv()
}

func LoadFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":" + c.HTTP.Port
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == defaultJWTSecret {
		return fmt.Errorf("refuse to run with default JWT_SECRET in %s", c.Env)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL=%q", c.Log.Level)
	}
	if c.Game.ClockInterval <= 0 {
		return errors.New("CLOCK_INTERVAL must be positive")
	}
	if c.Game.SessionTTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}
	if c.Game.MaxRejections < 1 {
		return errors.New("SECRET_MAX_REJECTIONS must be at least 1")
	}
	return nil
}
