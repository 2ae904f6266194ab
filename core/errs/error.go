package errs

import (
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// AgentError is the structured error type used throughout the agent system.
// It carries a machine-readable category, free-form context for diagnostics,
// and user-facing guidance derived from the category unless overridden.
//
// An AgentError is immutable after construction. Enriching one with extra
// context produces a new instance (see [*AgentError.WithContext]).
type AgentError struct {
	Message             string
	Category            ErrorCategory
	Context             map[string]any
	UserMessage         string
	RecoverySuggestions []string
	Timestamp           time.Time
	TraceID             string

	cause error
}

// Option customises an AgentError during construction.
type Option func(*AgentError)

// WithContext merges the given key/value pairs into the error's context.
// Later options win on key collisions.
func WithContext(context map[string]any) Option {
	return func(e *AgentError) {
		for k, v := range context {
			e.Context[k] = v
		}
	}
}

// WithUserMessage overrides the category-derived user-facing message.
func WithUserMessage(message string) Option {
	return func(e *AgentError) {
		e.UserMessage = message
	}
}

// WithSuggestions overrides the category-derived recovery suggestions.
func WithSuggestions(suggestions []string) Option {
	return func(e *AgentError) {
		e.RecoverySuggestions = suggestions
	}
}

// WithCause records the underlying error so callers can unwrap it with
// [errors.Is] / [errors.As].
func WithCause(cause error) Option {
	return func(e *AgentError) {
		e.cause = cause
	}
}

// New constructs an AgentError with the given message and category.
// The user message and recovery suggestions default to the category's fixed
// templates; the trace ID is a fresh ULID unique to this instance.
func New(message string, category ErrorCategory, options ...Option) *AgentError {
	agentErr := &AgentError{
		Message:   message,
		Category:  category,
		Context:   map[string]any{},
		Timestamp: time.Now(),
		TraceID:   ulid.Make().String(),
	}

	for _, option := range options {
		option(agentErr)
	}

	if agentErr.UserMessage == "" {
		agentErr.UserMessage = category.UserMessage()
	}
	if agentErr.RecoverySuggestions == nil {
		agentErr.RecoverySuggestions = category.RecoverySuggestions()
	}

	return agentErr
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *AgentError) Unwrap() error {
	return e.cause
}

// WithContext returns a copy of the error enriched with extra context.
// The receiver is left untouched; category, trace ID, and timestamp carry
// over so the rewrapped error still identifies the original failure.
func (e *AgentError) WithContext(context map[string]any) *AgentError {
	merged := make(map[string]any, len(e.Context)+len(context))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range context {
		merged[k] = v
	}

	clone := *e
	clone.Context = merged
	return &clone
}

// ToDict converts the error to a flat map for structured logging or
// serialisation. The category appears as its string value, and every context
// key passed at construction is preserved.
func (e *AgentError) ToDict() map[string]any {
	return map[string]any{
		"error_id":             e.TraceID,
		"timestamp":            e.Timestamp.Format(time.RFC3339Nano),
		"category":             string(e.Category),
		"message":              e.Message,
		"user_message":         e.UserMessage,
		"recovery_suggestions": e.RecoverySuggestions,
		"context":              e.Context,
	}
}

// LogValue implements slog.LogValuer so an AgentError logs as a structured
// group instead of a flat message string.
func (e *AgentError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error_id", e.TraceID),
		slog.String("category", string(e.Category)),
		slog.String("message", e.Message),
		slog.Any("context", e.Context),
	)
}

// AsAgentError extracts an *AgentError from err's chain.
// Returns nil and false when the chain contains none.
func AsAgentError(err error) (*AgentError, bool) {
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		return agentErr, true
	}
	return nil, false
}
