package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseExtraction decodes the JSON object the model was instructed to return.
// The model occasionally wraps its output in a markdown code fence despite
// instructions, so that wrapper is stripped first.
func parseExtraction(content string) (Extraction, error) {
	var jsonResp struct {
		Category   string  `json:"category"`
		Currency   string  `json:"currency"`
		Comment    string  `json:"comment,omitempty"`
		Amount     float64 `json:"amount"`
		Confidence float64 `json:"confidence"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return Extraction{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if jsonResp.Category == "" {
		return Extraction{}, fmt.Errorf("no category found in response")
	}

	return Extraction{
		Category:     jsonResp.Category,
		CurrencyCode: jsonResp.Currency,
		Comment:      jsonResp.Comment,
		Amount:       jsonResp.Amount,
		Confidence:   jsonResp.Confidence,
	}, nil
}

// cleanMarkdownWrapper removes a surrounding ```json code fence, if present.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
