// Package llm provides language model clients for expense extraction.
// It supports multiple providers including OpenAI and Anthropic, with
// request rate limiting and per-call cost accounting.
package llm

import "context"

// Client is the gateway to a language model provider. Invoke performs
// exactly one provider call; callers own any retry policy.
type Client interface {
	// Invoke sends one extraction request. The instruction carries the
	// classification rules and category list; input is the normalized
	// expense description.
	Invoke(ctx context.Context, instruction, input string) (Extraction, error)
	// Close releases client resources such as rate limiter goroutines.
	Close()
}

// Extraction is the structured result of one model call.
type Extraction struct {
	Category     string
	CurrencyCode string
	Comment      string
	Amount       float64
	Confidence   float64
	CostEstimate float64
}

// Config holds configuration for building an LLM client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	RateLimit   int
}
