package openai

import (
	"errors"
	"os"
)

// holds OpenAI-specific configuration
type Config struct {
	APIKey string
	Model  string
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is required")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini" // default model
	}

	return &Config{
		APIKey: apiKey,
		Model:  model,
	}, nil
}
