// Package preprocess validates and normalizes raw expense descriptions
// before they are sent to the classification gateway.
package preprocess

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Description length limits, in characters after trimming.
const (
	minDescriptionLen = 3
	maxDescriptionLen = 500
)

// unsafeMarkup holds patterns that are rejected outright. The description may
// later be rendered in a web view, so markup capable of executing script is
// refused before anything else sees it.
var unsafeMarkup = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon(?:error|click|load|mouseover|focus|blur)\s*=`),
}

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	digitToken     = regexp.MustCompile(`[0-9]`)
)

// currencySymbols maps symbols to their ISO-style codes, applied in order.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
}

// Result is the outcome of validating and normalizing one raw description.
// Valid == false implies Err is non-empty. Warnings may be present on valid
// and invalid results alike.
type Result struct {
	NormalizedText string
	Err            string
	Warnings       []string
	Valid          bool
}

// Preprocessor validates and normalizes raw user text. It is stateless and
// safe for concurrent use; Preprocess is a pure function of its input.
type Preprocessor struct {
	minLen int
	maxLen int
}

// New creates a preprocessor with the default length limits.
func New() *Preprocessor {
	return &Preprocessor{
		minLen: minDescriptionLen,
		maxLen: maxDescriptionLen,
	}
}

// Preprocess validates text and returns its normalized form. Normalization is
// a fixed point: preprocessing already-normalized text yields it unchanged.
func (p *Preprocessor) Preprocess(text string) Result {
	trimmed := strings.TrimSpace(text)

	if utf8.RuneCountInString(trimmed) < p.minLen {
		return Result{
			Err: fmt.Sprintf("description too short (minimum %d characters)", p.minLen),
		}
	}

	for _, pattern := range unsafeMarkup {
		if pattern.MatchString(trimmed) {
			return Result{
				Err: "invalid input: markup is not allowed in descriptions",
			}
		}
	}

	normalized := normalize(trimmed)

	// Symbol expansion can grow the text, so the cap applies to the
	// normalized form; a valid result then re-validates unchanged.
	if utf8.RuneCountInString(normalized) > p.maxLen {
		return Result{
			Err: fmt.Sprintf("description too long (maximum %d characters)", p.maxLen),
		}
	}

	var warnings []string
	if !digitToken.MatchString(normalized) {
		warnings = append(warnings, "no amount found in description")
	}

	return Result{
		NormalizedText: normalized,
		Warnings:       warnings,
		Valid:          true,
	}
}

// normalize rewrites known currency symbols to their ISO-style codes and
// collapses whitespace runs. Best effort; it never invalidates the input.
func normalize(text string) string {
	for _, cs := range currencySymbols {
		text = strings.ReplaceAll(text, cs.symbol, " "+cs.code+" ")
	}
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}
