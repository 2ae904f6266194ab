// Package ai defines the narrow interface through which the agent talks to
// an external model provider. The provider is an opaque collaborator: the
// agent sends a prompt and receives text, and every failure it raises is
// classified by the caller's error handler.
package ai

import "context"

// Response is the completed output of a model invocation.
type Response struct {
	Content string `json:"content"`
}

// Provider is the model collaborator contract. Implementations may fail
// with arbitrary errors; callers are expected to guard invocations with a
// retrier and classify failures rather than inspecting them directly.
type Provider interface {
	// Invoke sends a single prompt and returns the completed response.
	Invoke(ctx context.Context, prompt string) (*Response, error)

	// Model returns the model identifier used for invocations, for
	// diagnostics and health reporting.
	Model() string
}
