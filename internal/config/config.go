package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	JWTSecret       string
	ScoringCacheTTL time.Duration
	AIProvider      string
	AIModel         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CRAFTFOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Craftfolio API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("scoring.cache_ttl", "10m")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")

	ttlString := v.GetString("scoring.cache_ttl")
	if ttlString == "" {
		ttlString = "10m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid scoring cache ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		ScoringCacheTTL: ttl,
		AIProvider:      strings.ToLower(v.GetString("ai.provider")),
		AIModel:         v.GetString("ai.model"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
