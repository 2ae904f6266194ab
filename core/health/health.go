// Package health reports on the liveness of the agent's components: the
// model provider, registered tools, the shared circuit breaker, and the
// configuration snapshot. Checks are read-only except for the model
// connectivity probe, which sends one tiny prompt.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leofalp/agentics/core/config"
	"github.com/leofalp/agentics/core/errs"
	"github.com/leofalp/agentics/core/resilience"
	"github.com/leofalp/agentics/providers/ai"
	"github.com/leofalp/agentics/providers/tool"
	"github.com/leofalp/agentics/providers/tool/calculator"
)

// Component status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status describes the health of a single component.
type Status struct {
	Component    string         `json:"component"`
	Status       string         `json:"status"`
	Details      map[string]any `json:"details,omitempty"`
	ResponseTime time.Duration  `json:"response_time,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Report aggregates component statuses into an overall verdict.
type Report struct {
	Overall     string    `json:"overall"`
	Components  []Status  `json:"components"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Checker probes the agent's components. Any field may be nil; the
// corresponding check then reports what is missing instead of probing.
type Checker struct {
	provider ai.Provider
	tools    *tool.Catalog
	breaker  *resilience.CircuitBreaker
	handler  *errs.Handler
	cfg      *config.Config
}

// Option customises a Checker.
type Option func(*Checker)

// WithProvider sets the model provider to probe.
func WithProvider(provider ai.Provider) Option {
	return func(c *Checker) { c.provider = provider }
}

// WithTools sets the tool catalog to probe.
func WithTools(catalog *tool.Catalog) Option {
	return func(c *Checker) { c.tools = catalog }
}

// WithBreaker sets the circuit breaker to inspect.
func WithBreaker(breaker *resilience.CircuitBreaker) Option {
	return func(c *Checker) { c.breaker = breaker }
}

// WithHandler sets the error handler whose statistics feed the
// performance-metrics snapshot.
func WithHandler(handler *errs.Handler) Option {
	return func(c *Checker) { c.handler = handler }
}

// WithConfig sets the configuration snapshot to re-validate.
func WithConfig(cfg *config.Config) Option {
	return func(c *Checker) { c.cfg = cfg }
}

// NewChecker builds a Checker over the given components.
func NewChecker(options ...Option) *Checker {
	checker := &Checker{}
	for _, option := range options {
		option(checker)
	}
	return checker
}

// CheckToolAvailability probes every registered tool. The calculator gets
// a real end-to-end evaluation ("2 + 2" must come back "4"); other tools
// are reported present with their advertised metadata.
func (c *Checker) CheckToolAvailability(ctx context.Context) []Status {
	if c.tools == nil {
		return []Status{{
			Component: "tools",
			Status:    StatusUnhealthy,
			Details:   map[string]any{"error": "no tool catalog configured"},
		}}
	}

	var statuses []Status
	for _, name := range c.tools.Names() {
		registered, _ := c.tools.Get(name)
		status := Status{
			Component: "tool_" + name,
			Status:    StatusHealthy,
			Details:   map[string]any{"description": registered.ToolInfo().Description},
		}

		if name == calculator.ToolName {
			start := time.Now()
			output, err := registered.Call(ctx, `{"expression": "2 + 2"}`)
			status.ResponseTime = time.Since(start)
			status.Details["test_calculation"] = "2 + 2"

			switch {
			case err != nil:
				status.Status = StatusUnhealthy
				status.ErrorMessage = err.Error()
			default:
				result, parseErr := resultField(output)
				status.Details["result"] = result
				if parseErr != nil || result != "4" {
					status.Status = StatusUnhealthy
					status.ErrorMessage = fmt.Sprintf("unexpected test result: %s", output)
				}
			}
		}

		statuses = append(statuses, status)
	}

	return statuses
}

// CheckCircuitBreaker reports the breaker's state: open is unhealthy,
// half-open is degraded, closed is healthy regardless of the current
// failure count.
func (c *Checker) CheckCircuitBreaker() Status {
	if c.breaker == nil {
		return Status{
			Component: "circuit_breaker",
			Status:    StatusUnhealthy,
			Details:   map[string]any{"error": "no circuit breaker configured"},
		}
	}

	status := Status{
		Component: "circuit_breaker",
		Status:    StatusHealthy,
		Details: map[string]any{
			"state":             string(c.breaker.State()),
			"failure_count":     c.breaker.FailureCount(),
			"failure_threshold": c.breaker.FailureThreshold(),
			"timeout":           c.breaker.Timeout().Seconds(),
		},
	}

	switch c.breaker.State() {
	case resilience.StateOpen:
		status.Status = StatusUnhealthy
	case resilience.StateHalfOpen:
		status.Status = StatusDegraded
	}

	return status
}

// CheckModelConnectivity sends a one-word probe prompt to the provider and
// measures the round trip.
func (c *Checker) CheckModelConnectivity(ctx context.Context) Status {
	if c.provider == nil {
		return Status{
			Component: "llm_model",
			Status:    StatusUnhealthy,
			Details:   map[string]any{"error": "LLM not initialized"},
		}
	}

	start := time.Now()
	_, err := c.provider.Invoke(ctx, "Respond with exactly: OK")
	elapsed := time.Since(start)

	if err != nil {
		return Status{
			Component:    "llm_model",
			Status:       StatusUnhealthy,
			Details:      map[string]any{"model": c.provider.Model()},
			ResponseTime: elapsed,
			ErrorMessage: err.Error(),
		}
	}

	return Status{
		Component: "llm_model",
		Status:    StatusHealthy,
		Details: map[string]any{
			"model":           c.provider.Model(),
			"test_successful": true,
		},
		ResponseTime: elapsed,
	}
}

// CheckConfiguration re-validates the configuration snapshot.
func (c *Checker) CheckConfiguration() Status {
	if c.cfg == nil {
		return Status{
			Component: "configuration",
			Status:    StatusUnhealthy,
			Details:   map[string]any{"error": "no configuration loaded"},
		}
	}

	if violations := c.cfg.Validate(); len(violations) > 0 {
		return Status{
			Component: "configuration",
			Status:    StatusUnhealthy,
			Details:   map[string]any{"validation_errors": violations},
		}
	}

	return Status{
		Component: "configuration",
		Status:    StatusHealthy,
		Details: map[string]any{
			"provider": c.cfg.ModelProvider,
			"model":    c.cfg.ModelName,
		},
	}
}

// PerformanceMetrics snapshots breaker state, error statistics, and the key
// configuration values for monitoring.
func (c *Checker) PerformanceMetrics() map[string]any {
	metrics := map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if c.breaker != nil {
		metrics["circuit_breaker"] = map[string]any{
			"state":         string(c.breaker.State()),
			"failure_count": c.breaker.FailureCount(),
		}
	}

	if c.handler != nil {
		metrics["error_statistics"] = c.handler.Stats()
	}

	if c.cfg != nil {
		metrics["configuration"] = map[string]any{
			"model":              c.cfg.ModelName,
			"provider":           c.cfg.ModelProvider,
			"max_iterations":     c.cfg.AgentMaxIterations,
			"retry_max_attempts": c.cfg.RetryMaxAttempts,
		}
	}

	return metrics
}

// CheckAll runs every check and aggregates the verdict: any unhealthy
// component makes the system unhealthy, otherwise any degraded component
// makes it degraded.
func (c *Checker) CheckAll(ctx context.Context) Report {
	var components []Status
	components = append(components, c.CheckConfiguration())
	components = append(components, c.CheckCircuitBreaker())
	components = append(components, c.CheckModelConnectivity(ctx))
	components = append(components, c.CheckToolAvailability(ctx)...)

	overall := StatusHealthy
	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	return Report{
		Overall:     overall,
		Components:  components,
		GeneratedAt: time.Now(),
	}
}

// resultField extracts the "result" field from a tool's JSON output.
func resultField(output string) (string, error) {
	var parsed struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return "", err
	}
	return parsed.Result, nil
}
