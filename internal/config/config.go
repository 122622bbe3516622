// Package config loads runtime settings from environment variables.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime settings.
type Config struct {
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"5000"`
	DatabaseURL string `envconfig:"DATABASE_URL" validate:"required"`

	// JWTSecret signs bearer tokens. TokenTTLHours bounds their lifetime.
	JWTSecret     string `envconfig:"JWT_SECRET" validate:"required"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"168"`

	// LLM settings target any OpenAI-compatible completion endpoint.
	LLMAPIKey  string `envconfig:"LLM_API_KEY" validate:"required"`
	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	LLMModel   string `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`

	// GoogleAPIKey enables memory embeddings; empty disables semantic search.
	GoogleAPIKey   string `envconfig:"GOOGLE_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`

	HistoryLimit int `envconfig:"HISTORY_LIMIT" default:"6"`
	MemoryLimit  int `envconfig:"MEMORY_LIMIT" default:"5"`
}

// Load reads env vars, applies defaults, and validates required fields.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	return &cfg, nil
}
