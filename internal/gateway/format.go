package gateway

import (
	"strings"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Options is the generic tuning bag shared by every transaction. MaxTokens
// of zero means "no limit requested"; Temperature nil means "provider
// default".
type Options struct {
	Temperature *float64
	MaxTokens   int
}

// Request is the gateway wire body for POST /v1/chat/completions.
// MaxTokens only appears top-level for anthropic; everything else that
// survives formatting lives in Options.
type Request struct {
	Provider       string                 `json:"provider"`
	Model          string                 `json:"model"`
	Messages       []Message              `json:"messages"`
	StandardFormat bool                   `json:"standardFormat"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	Options        map[string]interface{} `json:"options,omitempty"`
	ConversationID string                 `json:"conversationId,omitempty"`
}

// FormatRequest maps the generic tuple into the provider-specific wire
// shape. Providers disagree on where (and whether) the token limit goes:
//
//	groq      token limit dropped entirely
//	openai    token limit dropped entirely
//	anthropic max_tokens as a TOP-LEVEL request field
//	mistral   max_tokens (snake_case) nested in options
//	other     passed through unchanged in options
//
// Temperature is always nested in options when present. Getting the
// placement wrong produces 400s upstream.
func FormatRequest(provider, model string, messages []Message, opts Options) Request {
	normalized := strings.ToLower(provider)
	req := Request{
		Provider:       normalized,
		Model:          model,
		Messages:       messages,
		StandardFormat: true,
	}

	switch normalized {
	case "groq", "openai":
		if opts.Temperature != nil {
			req.Options = map[string]interface{}{"temperature": *opts.Temperature}
		}
	case "anthropic":
		if opts.MaxTokens > 0 {
			req.MaxTokens = opts.MaxTokens
		}
		if opts.Temperature != nil {
			req.Options = map[string]interface{}{"temperature": *opts.Temperature}
		}
	case "mistral":
		providerOpts := map[string]interface{}{}
		if opts.MaxTokens > 0 {
			providerOpts["max_tokens"] = opts.MaxTokens
		}
		if opts.Temperature != nil {
			providerOpts["temperature"] = *opts.Temperature
		}
		if len(providerOpts) > 0 {
			req.Options = providerOpts
		}
	default:
		providerOpts := map[string]interface{}{}
		if opts.MaxTokens > 0 {
			providerOpts["maxTokens"] = opts.MaxTokens
		}
		if opts.Temperature != nil {
			providerOpts["temperature"] = *opts.Temperature
		}
		if len(providerOpts) > 0 {
			req.Options = providerOpts
		}
	}

	return req
}
