package gateway

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrAPIKeyMissing = errors.New("llm gateway api key is required, configure it in settings")

	ErrConfigMissing = errors.New("llm gateway configuration not found, configure it in settings")

	ErrMalformedResponse = errors.New("invalid response format from gateway: missing message content")

	ErrNoJSON = errors.New("failed to extract valid json from llm response")
)

type AuthenticationError struct {
	Detail string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s, check your llm gateway api key in settings", e.Detail)
}

type RateLimitError struct {
	Detail string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s, wait a moment and try again", e.Detail)
}

type InvalidRequestError struct {
	Detail string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s, check your provider/model configuration", e.Detail)
}

// GatewayError is a 500 from the gateway, meaning the upstream provider
// failed. Provider and model are included for diagnosis.
type GatewayError struct {
	Provider string
	Model    string
	Detail   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error: %s (provider: %s, model: %s)", e.Detail, e.Provider, e.Model)
}

type UnexpectedStatusError struct {
	Status int
	Detail string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected error (%d): %s", e.Status, e.Detail)
}

// NetworkError is a transport-level failure (DNS, connection refused),
// distinguished from HTTP-level errors so callers can decide whether a
// retry makes sense.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: unable to reach llm gateway: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
