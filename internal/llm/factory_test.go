package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErrPart string
	}{
		{
			name:   "anthropic provider",
			config: Config{Provider: "anthropic", APIKey: "test-key"},
		},
		{
			name:   "openai provider case-insensitive",
			config: Config{Provider: "OpenAI", APIKey: "test-key"},
		},
		{
			name:        "unsupported provider",
			config:      Config{Provider: "ollama", APIKey: "test-key"},
			wantErrPart: "unsupported LLM provider",
		},
		{
			name:        "missing API key surfaces provider error",
			config:      Config{Provider: "anthropic"},
			wantErrPart: "failed to create LLM client",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErrPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrPart)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, client)
			client.Close()
		})
	}
}
