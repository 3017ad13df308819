// Package llm is the language-model collaborator boundary. The core sends
// a prompt and expects a JSON-shaped response containing detected elements;
// everything about transport, auth, rate limiting, and retries lives here.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Errors for client construction.
var (
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrMissingAPIKey   = errors.New("api key required")
)

// Client completes a prompt against a language model. Implementations are
// safe for concurrent use.
type Client interface {
	// Complete sends the system and user prompts and returns the raw
	// model output text.
	Complete(ctx context.Context, system, user string) (string, error)

	// Available returns true if the client is configured and ready.
	Available() bool
}

// Config holds provider configuration.
type Config struct {
	Provider  string `koanf:"provider" json:"provider"` // "anthropic" or "openai"
	Model     string `koanf:"model" json:"model,omitempty"`
	APIKey    string `koanf:"api_key" json:"-"` // never serialized
	BaseURL   string `koanf:"base_url" json:"base_url,omitempty"`
	MaxTokens int    `koanf:"max_tokens" json:"max_tokens,omitempty"`
	Timeout   int    `koanf:"timeout" json:"timeout,omitempty"` // seconds
}

// NewClient builds a client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// retryableError wraps an error to indicate it can be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryableError checks if an error should be retried.
func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
