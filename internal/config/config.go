package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const defaultAllowedOrigins = "http://localhost:3000,http://127.0.0.1:3000"

// Config holds application configuration
type Config struct {
	ServerPort string `env:"PORT,default=8080"`
	Env        string `env:"ENV,default=development"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	// comma separated; also used for the WebSocket origin check
	RawAllowedOrigins string `env:"ALLOWED_ORIGINS"`
	AllowedOrigins    []string

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	WebhookURL     string `env:"WEBHOOK_URL"`
	WebhookAuthKey string `env:"WEBHOOK_AUTH_KEY"`

	EventBufferSize  int           `env:"EVENT_BUFFER_SIZE,default=100"`
	EventSinkTimeout time.Duration `env:"EVENT_SINK_TIMEOUT,default=5s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}

	// go-env splits tags on commas, so this default cannot live in the tag
	if cfg.RawAllowedOrigins == "" {
		cfg.RawAllowedOrigins = defaultAllowedOrigins
	}
	for _, origin := range strings.Split(cfg.RawAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	if cfg.EventBufferSize <= 0 {
		return Config{}, fmt.Errorf("config error: EVENT_BUFFER_SIZE must be positive, got %d", cfg.EventBufferSize)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
