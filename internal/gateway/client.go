package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://llmproxy.api.sparkbright.me"

type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.SugaredLogger
}

func NewClient(baseURL string, logger *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    resty.New(),
		baseURL: baseURL,
		logger:  logger,
	}
}

// Result is the normalized success shape of a chat completion.
type Result struct {
	Content  string
	Usage    json.RawMessage
	Metadata json.RawMessage
	Provider string
	Model    string
}

type chatResponse struct {
	Response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"response"`
	Usage    json.RawMessage `json:"usage"`
	Metadata json.RawMessage `json:"metadata"`
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// Chat performs a single attempt against the gateway's chat-completions
// endpoint. Retry and backoff policy, if any, belongs to the caller.
func (c *Client) Chat(ctx context.Context, provider, model string, messages []Message, opts Options, apiKey, conversationID string) (*Result, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	body := FormatRequest(provider, model, messages, opts)
	body.ConversationID = conversationID

	c.logger.Debugw("llm gateway request",
		"provider", provider, "model", model, "messages", len(messages))

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetBody(&body).
		Post(c.baseURL + "/v1/chat/completions")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.IsError() {
		return nil, classify(resp.StatusCode(), resp.Body(), provider, model)
	}

	parsed := chatResponse{}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if len(parsed.Response.Choices) == 0 || parsed.Response.Choices[0].Message.Content == "" {
		return nil, ErrMalformedResponse
	}

	return &Result{
		Content:  parsed.Response.Choices[0].Message.Content,
		Usage:    parsed.Usage,
		Metadata: parsed.Metadata,
		Provider: parsed.Provider,
		Model:    parsed.Model,
	}, nil
}

func classify(status int, body []byte, provider, model string) error {
	eb := errorBody{}
	_ = json.Unmarshal(body, &eb)

	switch status {
	case http.StatusUnauthorized:
		return &AuthenticationError{Detail: orDefault(eb.Error, "invalid api key")}
	case http.StatusTooManyRequests:
		detail := orDefault(string(eb.Details), "too many requests")
		return &RateLimitError{Detail: detail}
	case http.StatusBadRequest:
		return &InvalidRequestError{Detail: orDefault(eb.Error, "bad request")}
	case http.StatusInternalServerError:
		detail := orDefault(eb.Error, "internal server error")
		if len(eb.Details) > 0 {
			detail = fmt.Sprintf("%s, details: %s", detail, eb.Details)
		}
		return &GatewayError{Provider: provider, Model: model, Detail: detail}
	default:
		return &UnexpectedStatusError{Status: status, Detail: orDefault(eb.Error, "unknown error")}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type ModelOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModelCatalog maps provider name to the models the gateway exposes for it.
type ModelCatalog map[string][]ModelOption

// Models fetches the provider to model-list map used to populate the
// configuration surface. Requires auth. A bad key is an error; an
// unreachable or broken listing degrades to the static catalog so the
// configuration surface stays usable.
func (c *Client) Models(ctx context.Context, apiKey string) (ModelCatalog, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	catalog := ModelCatalog{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetResult(&catalog).
		Get(c.baseURL + "/v1/models")
	if err != nil {
		c.logger.Warnw("model listing unreachable, serving static catalog", "err", err)
		return FallbackCatalog(), nil
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, &AuthenticationError{Detail: "invalid api key"}
	}
	if resp.IsError() {
		eb := errorBody{}
		_ = json.Unmarshal(resp.Body(), &eb)
		c.logger.Warnw("model listing failed, serving static catalog",
			"status", resp.StatusCode(), "err", orDefault(eb.Error, "unknown error"))
		return FallbackCatalog(), nil
	}
	return catalog, nil
}

// TestConnection probes /health (no auth) and then authenticates against
// /v1/models, mirroring the settings surface's connection test.
func (c *Client) TestConnection(ctx context.Context, apiKey string) (ModelCatalog, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.baseURL + "/health")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.IsError() {
		return nil, errors.Errorf("health check failed: gateway may be down (status: %d)", resp.StatusCode())
	}

	catalog, err := c.Models(ctx, apiKey)
	if err != nil {
		return nil, errors.Wrap(err, "authentication check")
	}
	return catalog, nil
}

type provisionRequest struct {
	AppName   string `json:"appName"`
	RateLimit int    `json:"rateLimit"`
}

type provisionResponse struct {
	APIKey string `json:"apiKey"`
}

// ProvisionKey creates a new gateway API key via /admin/apps. Only used
// during initial setup, never at runtime.
func (c *Client) ProvisionKey(ctx context.Context, appName string, rateLimit int) (string, error) {
	out := provisionResponse{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&provisionRequest{AppName: appName, RateLimit: rateLimit}).
		SetResult(&out).
		Post(c.baseURL + "/admin/apps")
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	if resp.IsError() {
		return "", errors.Errorf("key provisioning failed (status: %d)", resp.StatusCode())
	}
	if out.APIKey == "" {
		return "", ErrMalformedResponse
	}
	return out.APIKey, nil
}
