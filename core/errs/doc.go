// Package errs provides structured error handling for the agent system.
//
// Every failure that crosses a component boundary is represented as an
// [*AgentError]: a message plus a closed [ErrorCategory], free-form context,
// a user-facing message, and ordered recovery suggestions. Raw errors are
// never surfaced to callers directly; they are classified and wrapped by a
// [Handler], which also keeps per-category occurrence counters and emits one
// structured log line per handled error.
package errs
