// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

// Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

type Config struct {
	// An empty key is not a validation failure; Reply reports it as a
	// CONFIG error so the chat can show a specific message.
	APIKey  string
	BaseURL string

	Model          string
	EmbeddingModel string

	Temperature float32
	Timeout     time.Duration

	// Grounding
	TopK int
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TopK < 0 {
		return fmt.Errorf("top k cannot be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Model:          "gemini-2.5-flash",
		EmbeddingModel: "text-embedding-004",
		Temperature:    0.7,
		Timeout:        60 * time.Second,
		TopK:           4,
	}
}
