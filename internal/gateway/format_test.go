package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fl(v float64) *float64 { return &v }

func TestFormatRequestTokenPlacement(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "hi"}}

	tests := []struct {
		name            string
		provider        string
		opts            Options
		wantTopLevel    int
		wantOptions     map[string]interface{}
		wantNoTokenKeys bool
	}{
		{
			name:            "groq drops token limit entirely",
			provider:        "groq",
			opts:            Options{Temperature: fl(0.7), MaxTokens: 10000},
			wantOptions:     map[string]interface{}{"temperature": 0.7},
			wantNoTokenKeys: true,
		},
		{
			name:            "openai drops token limit entirely",
			provider:        "openai",
			opts:            Options{Temperature: fl(0.5), MaxTokens: 2500},
			wantOptions:     map[string]interface{}{"temperature": 0.5},
			wantNoTokenKeys: true,
		},
		{
			name:         "anthropic puts max_tokens top-level",
			provider:     "anthropic",
			opts:         Options{Temperature: fl(0.3), MaxTokens: 64000},
			wantTopLevel: 64000,
			wantOptions:  map[string]interface{}{"temperature": 0.3},
		},
		{
			name:        "mistral nests snake_case max_tokens",
			provider:    "mistral",
			opts:        Options{Temperature: fl(0.7), MaxTokens: 4096},
			wantOptions: map[string]interface{}{"max_tokens": 4096, "temperature": 0.7},
		},
		{
			name:        "unknown provider passes options through unchanged",
			provider:    "cerebras",
			opts:        Options{Temperature: fl(0.9), MaxTokens: 500},
			wantOptions: map[string]interface{}{"maxTokens": 500, "temperature": 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := FormatRequest(tt.provider, "some-model", messages, tt.opts)

			assert.Equal(t, tt.provider, req.Provider)
			assert.Equal(t, "some-model", req.Model)
			assert.True(t, req.StandardFormat)
			assert.Equal(t, tt.wantTopLevel, req.MaxTokens)

			// compare through json to normalize numeric types
			wantJSON, err := json.Marshal(tt.wantOptions)
			assert.Nil(t, err)
			gotJSON, err := json.Marshal(req.Options)
			assert.Nil(t, err)
			assert.JSONEq(t, string(wantJSON), string(gotJSON))

			if tt.wantNoTokenKeys {
				body, err := json.Marshal(&req)
				assert.Nil(t, err)
				assert.NotContains(t, string(body), "max_tokens")
				assert.NotContains(t, string(body), "maxTokens")
			}
		})
	}
}

func TestFormatRequestProviderCaseInsensitive(t *testing.T) {
	req := FormatRequest("Anthropic", "claude-3-haiku-20240307", nil, Options{MaxTokens: 100})
	assert.Equal(t, "anthropic", req.Provider)
	assert.Equal(t, 100, req.MaxTokens)
	assert.Nil(t, req.Options)
}

func TestFormatRequestOmitsEmptyOptions(t *testing.T) {
	req := FormatRequest("groq", "openai/gpt-oss-120b", nil, Options{MaxTokens: 10000})
	assert.Nil(t, req.Options)

	body, err := json.Marshal(&req)
	assert.Nil(t, err)
	assert.NotContains(t, string(body), "options")
}
