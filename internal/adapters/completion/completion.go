// Package completion wraps the interchangeable text-completion
// backends behind a single Complete call. Exactly one backend serves a
// request; there is no fallback chaining after selection.
package completion

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	ErrNoProviderConfigured = errors.New("no completion provider configured")
	ErrEmptyCompletion      = errors.New("completion backend returned no content")
)

// Completer is the uniform "prompt in, text out" capability every
// backend implements.
type Completer interface {
	// Complete sends the system prompt and user text to the backend and
	// returns the raw response text. The context deadline bounds the
	// whole exchange.
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)

	// Name identifies the backend in logs and errors.
	Name() string
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 256
	maxResponseBytes = 1 << 20
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
