package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessor_Preprocess(t *testing.T) {
	p := New()

	tests := []struct {
		name        string
		input       string
		wantValid   bool
		wantText    string
		wantErrPart string
	}{
		{
			name:      "simple description",
			input:     "coffee at blue bottle 4.50",
			wantValid: true,
			wantText:  "coffee at blue bottle 4.50",
		},
		{
			name:      "collapses whitespace runs",
			input:     "  lunch   with\tteam\n12.00  ",
			wantValid: true,
			wantText:  "lunch with team 12.00",
		},
		{
			name:      "minimum length boundary",
			input:     "abc",
			wantValid: true,
			wantText:  "abc",
		},
		{
			name:        "too short after trimming",
			input:       "  ab  ",
			wantValid:   false,
			wantErrPart: "too short",
		},
		{
			name:        "empty input",
			input:       "",
			wantValid:   false,
			wantErrPart: "too short",
		},
		{
			name:      "maximum length boundary",
			input:     strings.Repeat("a", 500),
			wantValid: true,
			wantText:  strings.Repeat("a", 500),
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", 501),
			wantValid:   false,
			wantErrPart: "too long",
		},
		{
			name:        "script tag",
			input:       "dinner <script>alert(1)</script> 20",
			wantValid:   false,
			wantErrPart: "invalid input",
		},
		{
			name:        "script tag mixed case",
			input:       "dinner <ScRiPt>alert(1) 20",
			wantValid:   false,
			wantErrPart: "invalid input",
		},
		{
			name:        "javascript scheme",
			input:       "see javascript:alert(1) receipt 10",
			wantValid:   false,
			wantErrPart: "invalid input",
		},
		{
			name:        "inline event handler",
			input:       "img onerror=alert(1) groceries 30",
			wantValid:   false,
			wantErrPart: "invalid input",
		},
		{
			name:      "dollar symbol becomes code",
			input:     "coffee $4.50",
			wantValid: true,
			wantText:  "coffee USD 4.50",
		},
		{
			name:      "euro symbol becomes code",
			input:     "train ticket €12",
			wantValid: true,
			wantText:  "train ticket EUR 12",
		},
		{
			name:      "symbol glued to amount",
			input:     "taxi 18.20£",
			wantValid: true,
			wantText:  "taxi 18.20 GBP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Preprocess(tt.input)

			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Empty(t, got.Err)
				assert.Equal(t, tt.wantText, got.NormalizedText)
			} else {
				require.NotEmpty(t, got.Err)
				assert.Contains(t, got.Err, tt.wantErrPart)
				assert.Empty(t, got.NormalizedText)
			}
		})
	}
}

func TestPreprocessor_MissingAmountWarning(t *testing.T) {
	p := New()

	got := p.Preprocess("monthly bus pass")
	require.True(t, got.Valid)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "no amount")

	got = p.Preprocess("monthly bus pass 64")
	require.True(t, got.Valid)
	assert.Empty(t, got.Warnings)
}

func TestPreprocessor_SymbolExpansionRespectsLengthCap(t *testing.T) {
	p := New()

	t.Run("expansion past the cap is rejected", func(t *testing.T) {
		// 303 characters raw, but every dollar sign grows by five.
		got := p.Preprocess(strings.Repeat("a$", 150) + " 12")
		require.False(t, got.Valid)
		assert.Contains(t, got.Err, "too long")
	})

	t.Run("expansion under the cap stays a fixed point", func(t *testing.T) {
		input := strings.Repeat("a$", 80) + " 12"
		first := p.Preprocess(input)
		require.True(t, first.Valid)

		second := p.Preprocess(first.NormalizedText)
		require.True(t, second.Valid)
		assert.Equal(t, first.NormalizedText, second.NormalizedText)
	})
}

func TestPreprocessor_NormalizationIsIdempotent(t *testing.T) {
	p := New()

	inputs := []string{
		"coffee $4.50",
		"  lunch   with\tteam 12.00  ",
		"train €12 and taxi ¥900",
		"plain groceries 33",
		"18.20£ airport ride",
	}

	for _, input := range inputs {
		first := p.Preprocess(input)
		require.True(t, first.Valid, "input %q", input)

		second := p.Preprocess(first.NormalizedText)
		require.True(t, second.Valid, "normalized %q", first.NormalizedText)
		assert.Equal(t, first.NormalizedText, second.NormalizedText)
	}
}
