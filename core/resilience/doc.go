// Package resilience guards calls to unreliable collaborators (the model
// provider, tool execution) with a circuit breaker and bounded
// retry-with-backoff.
//
// A [CircuitBreaker] tracks consecutive failures per guarded resource and
// stops traffic for a cooldown period once a threshold is reached. A
// [Retrier] wraps a single operation as a closure, consults the breaker
// before each run, classifies failures through an errs.Handler, and backs
// off exponentially with jitter between attempts. SECURITY and VALIDATION
// failures abort immediately; retrying bad input cannot help.
package resilience
