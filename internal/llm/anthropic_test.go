package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: Config{APIKey: "test-key"},
		},
		{
			name:    "missing API key",
			config:  Config{APIKey: ""},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "claude-3-opus-20240229",
				Temperature: 0.5,
				MaxTokens:   200,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newAnthropicClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestAnthropicClient_Invoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "classification rules", req["system"])

		resp := map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": `{"category": "Food", "amount": 4.5, "currency": "USD", "confidence": 0.9}`},
			},
			"usage": map[string]int{"input_tokens": 100, "output_tokens": 50},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", Model: "claude-3-5-sonnet-20241022"})
	require.NoError(t, err)
	client.(*anthropicClient).baseURL = server.URL

	got, err := client.Invoke(context.Background(), "classification rules", "coffee USD 4.50")
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Category)
	assert.Equal(t, "USD", got.CurrencyCode)
	assert.InDelta(t, 4.5, got.Amount, 0.001)
	assert.InDelta(t, 0.9, got.Confidence, 0.001)
	assert.Greater(t, got.CostEstimate, 0.0)
}

func TestAnthropicClient_InvokeErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErrPart string
	}{
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `{"error": "overloaded"}`,
			wantErrPart: "anthropic API error (status 500)",
		},
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"error": "rate_limit"}`,
			wantErrPart: "rate limit",
		},
		{
			name:        "empty content",
			status:      http.StatusOK,
			body:        `{"content": [], "usage": {"input_tokens": 1, "output_tokens": 0}}`,
			wantErrPart: "no content in response",
		},
		{
			name:        "non-JSON payload from model",
			status:      http.StatusOK,
			body:        `{"content": [{"type": "text", "text": "Food, probably"}], "usage": {}}`,
			wantErrPart: "failed to parse JSON response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newAnthropicClient(Config{APIKey: "test-key"})
			require.NoError(t, err)
			client.(*anthropicClient).baseURL = server.URL

			_, err = client.Invoke(context.Background(), "rules", "input")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrPart)
		})
	}
}
