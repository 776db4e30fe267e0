// Package engine implements the classification orchestrator that turns a
// normalized expense description into a categorized candidate.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtrella/outlay/internal/common"
	"github.com/mtrella/outlay/internal/llm"
	"github.com/mtrella/outlay/internal/model"
	"github.com/mtrella/outlay/internal/taxonomy"
)

// Gateway is the slice of the LLM client the orchestrator drives. Classify
// performs exactly one Invoke per call; retry policy belongs to callers.
type Gateway interface {
	Invoke(ctx context.Context, instruction, input string) (llm.Extraction, error)
}

// Classifier orchestrates single classifications against the gateway and
// resolves results into the category taxonomy.
type Classifier struct {
	gateway     Gateway
	tax         *taxonomy.Taxonomy
	instruction string
	timeout     time.Duration
}

// Config holds configuration options for the classifier.
type Config struct {
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// New creates a classifier over the given gateway and category set.
func New(gateway Gateway, categories []model.Category) *Classifier {
	return NewWithConfig(gateway, categories, DefaultConfig())
}

// NewWithConfig creates a classifier with custom configuration. The category
// set is fixed for the classifier's lifetime; both the taxonomy and the
// gateway instruction are derived from it once.
func NewWithConfig(gateway Gateway, categories []model.Category, config Config) *Classifier {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	tax := taxonomy.New(names)

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &Classifier{
		gateway:     gateway,
		tax:         tax,
		instruction: buildInstruction(tax, categories),
		timeout:     timeout,
	}
}

// Taxonomy returns the category taxonomy the classifier resolves against.
func (c *Classifier) Taxonomy() *taxonomy.Taxonomy {
	return c.tax
}

// Classify sends text to the gateway exactly once and validates the result.
// A category outside the taxonomy resolves to the fallback without error;
// malformed results (empty category, confidence out of range) and gateway
// failures surface as ClassificationError.
func (c *Classifier) Classify(ctx context.Context, text string) (model.Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return model.Candidate{}, &common.ValidationError{Reason: "empty description"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	extraction, err := c.gateway.Invoke(ctx, c.instruction, text)
	if err != nil {
		return model.Candidate{}, &common.ClassificationError{Err: err}
	}

	if extraction.Category == "" {
		return model.Candidate{}, &common.ClassificationError{Err: fmt.Errorf("empty category in gateway response")}
	}
	if extraction.Confidence < 0 || extraction.Confidence > 1 {
		return model.Candidate{}, &common.ClassificationError{Err: fmt.Errorf("confidence %.3f outside [0, 1]", extraction.Confidence)}
	}

	category, known := c.tax.Resolve(extraction.Category)
	if !known {
		slog.Debug("gateway category not in taxonomy, using fallback",
			"category", extraction.Category,
			"fallback", category)
	}

	return model.Candidate{
		Category:     category,
		CurrencyCode: strings.ToUpper(strings.TrimSpace(extraction.CurrencyCode)),
		Comment:      extraction.Comment,
		Amount:       extraction.Amount,
		Confidence:   extraction.Confidence,
		CostEstimate: extraction.CostEstimate,
		ProducedAt:   time.Now(),
	}, nil
}

// buildInstruction renders the system instruction: the category list with
// descriptions and the required response shape.
func buildInstruction(tax *taxonomy.Taxonomy, categories []model.Category) string {
	descriptions := make(map[string]string, len(categories))
	for _, cat := range categories {
		if cat.Description != "" {
			descriptions[cat.Name] = cat.Description
		}
	}

	var sb strings.Builder
	sb.WriteString("You are an expense classification assistant. ")
	sb.WriteString("Classify the expense description into exactly one of the known categories ")
	sb.WriteString("and extract the monetary amount and currency when present.\n\n")
	sb.WriteString("Known categories:\n")
	for _, name := range tax.Names() {
		sb.WriteString("- ")
		sb.WriteString(name)
		if desc, ok := descriptions[name]; ok {
			sb.WriteString(": ")
			sb.WriteString(desc)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nIf no category fits, use \"")
	sb.WriteString(taxonomy.FallbackName)
	sb.WriteString("\".\n\n")
	sb.WriteString("Respond with ONLY a valid JSON object, no markdown formatting or commentary:\n")
	sb.WriteString(`{"category": "<category name>", "amount": <number, 0 if absent>, "currency": "<ISO 4217 code, empty if absent>", "confidence": <0.0 to 1.0>, "comment": "<short note, optional>"}`)
	return sb.String()
}
