package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App    AppConfig
	Server ServerConfig
	Places PlacesConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
}

// Development reports whether internal error detail may reach clients.
func (c AppConfig) Development() bool {
	return c.Env == EnvDevelopment
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
}

type PlacesConfig struct {
	APIKey  string
	BaseURL string
}

// Load reads configuration from the environment, loading envFiles (or
// ".env" when none are given) first if they exist. A missing API key is
// not an error here: the proxy reports it per request.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      strings.ToLower(getEnv("APP_ENV", EnvProduction)),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 70*time.Second),
			IdleTimeout:    getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			HandlerTimeout: getEnvAsDuration("HANDLER_TIMEOUT", 60*time.Second),
		},
		Places: PlacesConfig{
			APIKey:  strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")),
			BaseURL: getEnv("PLACES_BASE_URL", "https://maps.googleapis.com"),
		},
	}

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, errors.New("PORT must be numeric")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
