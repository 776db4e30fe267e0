package llm

import "strings"

// tokenPrices holds USD prices per million tokens.
type tokenPrices struct {
	input  float64
	output float64
}

// modelPrices is keyed by model name prefix so dated releases of the same
// model resolve without new entries.
var modelPrices = map[string]tokenPrices{
	"claude-3-5-sonnet": {input: 3.00, output: 15.00},
	"claude-3-5-haiku":  {input: 0.80, output: 4.00},
	"claude-3-opus":     {input: 15.00, output: 75.00},
	"claude-3-haiku":    {input: 0.25, output: 1.25},
	"gpt-4o-mini":       {input: 0.15, output: 0.60},
	"gpt-4o":            {input: 2.50, output: 10.00},
	"gpt-4-turbo":       {input: 10.00, output: 30.00},
}

// defaultPrices is used for unknown models. Mid-tier pricing keeps the
// estimate an overcount rather than zero.
var defaultPrices = tokenPrices{input: 3.00, output: 15.00}

// estimateCost returns the approximate USD cost of one call from its token
// usage. Longest matching prefix wins so "gpt-4o-mini" is not priced as
// "gpt-4o".
func estimateCost(model string, inputTokens, outputTokens int) float64 {
	prices := defaultPrices
	longest := 0
	for prefix, p := range modelPrices {
		if strings.HasPrefix(model, prefix) && len(prefix) > longest {
			prices = p
			longest = len(prefix)
		}
	}
	return float64(inputTokens)*prices.input/1e6 + float64(outputTokens)*prices.output/1e6
}
