package llm

import (
	"fmt"
	"strings"
)

// NewClient creates an LLM client for the configured provider, wrapped with
// a token bucket rate limiter.
func NewClient(cfg Config) (Client, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return newThrottledClient(client, cfg.RateLimit), nil
}
