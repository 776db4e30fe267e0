package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Extraction
		wantErr bool
	}{
		{
			name:    "plain JSON object",
			content: `{"category": "Food", "amount": 4.5, "currency": "USD", "confidence": 0.92, "comment": "coffee"}`,
			want: Extraction{
				Category:     "Food",
				CurrencyCode: "USD",
				Comment:      "coffee",
				Amount:       4.5,
				Confidence:   0.92,
			},
		},
		{
			name: "json code fence",
			content: "```json\n" +
				`{"category": "Transport", "amount": 18, "currency": "EUR", "confidence": 0.8}` +
				"\n```",
			want: Extraction{
				Category:     "Transport",
				CurrencyCode: "EUR",
				Amount:       18,
				Confidence:   0.8,
			},
		},
		{
			name: "bare code fence",
			content: "```\n" +
				`{"category": "Health", "confidence": 0.7}` +
				"\n```",
			want: Extraction{
				Category:   "Health",
				Confidence: 0.7,
			},
		},
		{
			name:    "optional fields omitted",
			content: `{"category": "Other", "confidence": 0.3}`,
			want: Extraction{
				Category:   "Other",
				Confidence: 0.3,
			},
		},
		{
			name:    "missing category",
			content: `{"amount": 10, "confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			content: "I think this is Food with high confidence",
			wantErr: true,
		},
		{
			name:    "empty content",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtraction(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no wrapper",
			content: `{"category": "Food"}`,
			want:    `{"category": "Food"}`,
		},
		{
			name:    "json fence",
			content: "```json\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "fence without language",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "surrounding whitespace",
			content: "  \n```json\n{\"a\": 1}\n```\n  ",
			want:    `{"a": 1}`,
		},
		{
			name:    "unterminated fence",
			content: "```json\n{\"a\": 1}",
			want:    `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.content))
		})
	}
}

func TestEstimateCost(t *testing.T) {
	// 1M input + 1M output tokens at claude-3-5-sonnet pricing.
	cost := estimateCost("claude-3-5-sonnet-20241022", 1_000_000, 1_000_000)
	assert.InDelta(t, 18.00, cost, 0.001)

	// Longest prefix must win: gpt-4o-mini is not gpt-4o.
	mini := estimateCost("gpt-4o-mini-2024-07-18", 1_000_000, 0)
	assert.InDelta(t, 0.15, mini, 0.001)

	// Unknown models fall back to default pricing rather than zero.
	unknown := estimateCost("some-future-model", 1_000_000, 0)
	assert.InDelta(t, 3.00, unknown, 0.001)

	assert.Zero(t, estimateCost("gpt-4o", 0, 0))
}
