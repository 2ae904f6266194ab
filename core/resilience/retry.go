package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/leofalp/agentics/core/errs"
)

// RetryPolicy holds the tuning parameters for retry-with-backoff. Pure
// configuration, no mutable state. Zero values are replaced with the
// defaults documented below when NewRetrier is called.
type RetryPolicy struct {
	// MaxRetries is the number of retry attempts after the first failure.
	// A value of 3 means the operation runs at most 4 times. Default: 3.
	MaxRetries int

	// BaseDelay is the backoff before the first retry; successive retries
	// double it. Default: 1s.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff. Default: 60s.
	MaxDelay time.Duration
}

// applyPolicyDefaults fills in zero-valued fields with the documented defaults.
func applyPolicyDefaults(policy *RetryPolicy) {
	if policy.MaxRetries == 0 {
		policy.MaxRetries = 3
	}
	if policy.BaseDelay == 0 {
		policy.BaseDelay = time.Second
	}
	if policy.MaxDelay == 0 {
		policy.MaxDelay = 60 * time.Second
	}
}

// backoffDelay returns the sleep before retrying after the given attempt
// (0-indexed): min(BaseDelay * 2^attempt, MaxDelay) scaled by a uniform
// jitter factor in [0.5, 1.0) to avoid synchronized retry storms.
func backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	delay := float64(policy.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}

	jitter := 0.5 + rand.Float64()*0.5 //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(delay * jitter)
}

// Retrier executes operations with bounded retries, exponential backoff,
// and optional circuit-breaker gating. Failures are classified through an
// errs.Handler; SECURITY and VALIDATION failures abort without retrying.
type Retrier struct {
	policy    RetryPolicy
	breaker   *CircuitBreaker
	handler   *errs.Handler
	operation string
	logger    *slog.Logger
}

// RetrierOption customises a Retrier during construction.
type RetrierOption func(*Retrier)

// WithBreaker attaches a circuit breaker consulted before every execution
// and updated with every outcome.
func WithBreaker(breaker *CircuitBreaker) RetrierOption {
	return func(r *Retrier) {
		r.breaker = breaker
	}
}

// WithHandler sets the error handler used to classify and log failures.
func WithHandler(handler *errs.Handler) RetrierOption {
	return func(r *Retrier) {
		r.handler = handler
	}
}

// WithOperationName labels the guarded operation in errors and logs.
func WithOperationName(name string) RetrierOption {
	return func(r *Retrier) {
		r.operation = name
	}
}

// WithLogger sets the logger for retry progress lines. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) RetrierOption {
	return func(r *Retrier) {
		r.logger = logger
	}
}

// NewRetrier builds a Retrier from the given policy. Zero-valued policy
// fields are replaced with defaults (see [RetryPolicy]).
func NewRetrier(policy RetryPolicy, options ...RetrierOption) *Retrier {
	applyPolicyDefaults(&policy)

	retrier := &Retrier{
		policy:    policy,
		operation: "operation",
		logger:    slog.Default(),
	}
	for _, option := range options {
		option(retrier)
	}

	return retrier
}

// Policy returns the retrier's effective policy (defaults applied).
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// handle classifies a raw failure, falling back to a basic UNKNOWN wrap when
// no handler is attached.
func (r *Retrier) handle(err error, extraContext map[string]any, operation string) *errs.AgentError {
	if r.handler != nil {
		return r.handler.Handle(err, extraContext, operation)
	}

	extraContext["operation"] = operation
	if agentErr, ok := errs.AsAgentError(err); ok {
		return agentErr.WithContext(extraContext)
	}
	return errs.New(err.Error(), errs.CategoryUnknown,
		errs.WithContext(extraContext),
		errs.WithCause(err),
	)
}

// Do executes op under the retrier's policy and returns its result.
//
// The breaker, when attached, is consulted once up front: an open circuit
// fails immediately with a CONNECTIVITY error and op is never called.
// Each failure is classified and recorded; retryable categories back off
// exponentially with jitter, bounded by MaxRetries. The backoff sleep
// honours ctx cancellation. On exhaustion the final error carries
// retries_exhausted and total_attempts context.
//
// Attempts are 0-indexed internally and 1-indexed in logs; op runs at most
// MaxRetries+1 times.
func Do[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if r.breaker != nil && !r.breaker.IsAvailable() {
		return zero, errs.New(
			"Service temporarily unavailable (circuit breaker open)",
			errs.CategoryConnectivity,
			errs.WithContext(map[string]any{
				"circuit_breaker_state": string(r.breaker.State()),
				"operation":             r.operation,
			}),
		)
	}

	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if r.breaker != nil {
				r.breaker.RecordSuccess()
			}
			return result, nil
		}

		lastErr = err
		handled := r.handle(err, map[string]any{
			"attempt":     attempt + 1,
			"max_retries": r.policy.MaxRetries + 1,
		}, r.operation)

		if r.breaker != nil {
			r.breaker.RecordFailure()
		}

		if !handled.Category.Retryable() {
			return zero, handled
		}

		if attempt == r.policy.MaxRetries {
			break
		}

		delay := backoffDelay(r.policy, attempt)
		r.logger.InfoContext(ctx, fmt.Sprintf("retrying %s in %s", r.operation, delay.Round(time.Millisecond)),
			slog.String("trace_id", handled.TraceID),
			slog.Int("attempt", attempt+2),
			slog.Int("max_attempts", r.policy.MaxRetries+1),
		)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	exhaustedContext := map[string]any{
		"retries_exhausted": true,
		"total_attempts":    r.policy.MaxRetries + 1,
	}

	if r.handler == nil {
		if _, ok := errs.AsAgentError(lastErr); !ok {
			return zero, errs.New(
				fmt.Sprintf("Operation %s failed after %d attempts: %v", r.operation, r.policy.MaxRetries+1, lastErr),
				errs.CategoryConnectivity,
				errs.WithContext(exhaustedContext),
				errs.WithCause(lastErr),
			)
		}
	}

	return zero, r.handle(lastErr, exhaustedContext, r.operation+"_final_failure")
}

// Run is the result-free form of [Do] for operations that only report an error.
func (r *Retrier) Run(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Do(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
