// Package agent wires the configured model provider, the tool catalog, and
// the resilience layer into a single entry point. The agent itself stays
// thin: model orchestration and conversation memory belong to external
// collaborators, so Ask is one guarded provider invocation and RunTool is
// one guarded catalog dispatch.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/leofalp/agentics/core/config"
	"github.com/leofalp/agentics/core/errs"
	"github.com/leofalp/agentics/core/resilience"
	"github.com/leofalp/agentics/providers/ai"
	"github.com/leofalp/agentics/providers/tool"
	"github.com/leofalp/agentics/providers/tool/calculator"
)

// Agent executes prompts and tool calls under retry and circuit-breaker
// protection. One shared breaker guards the model provider for the process
// lifetime.
type Agent struct {
	cfg      *config.Config
	provider ai.Provider
	tools    *tool.Catalog
	breaker  *resilience.CircuitBreaker
	handler  *errs.Handler
	retrier  *resilience.Retrier
	logger   *slog.Logger
}

// Option customises an Agent during construction.
type Option func(*Agent)

// WithLogger sets the agent's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithHandler supplies a shared error handler; by default the agent builds
// its own isolated instance.
func WithHandler(handler *errs.Handler) Option {
	return func(a *Agent) {
		a.handler = handler
	}
}

// WithTools replaces the default catalog (which contains the calculator).
func WithTools(catalog *tool.Catalog) Option {
	return func(a *Agent) {
		a.tools = catalog
	}
}

// New builds an Agent from a validated configuration and a model provider.
// Retry and breaker thresholds, and the calculator's limits, come from cfg.
func New(cfg *config.Config, provider ai.Provider, options ...Option) *Agent {
	a := &Agent{
		cfg:      cfg,
		provider: provider,
	}
	for _, option := range options {
		option(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.handler == nil {
		a.handler = errs.NewHandler(a.logger)
	}
	if a.tools == nil {
		a.tools = tool.NewCatalogWithTools(calculator.NewTool(a.handler,
			calculator.WithMaxExpressionLength(cfg.CalculatorMaxLength),
			calculator.WithMaxPower(cfg.CalculatorMaxPower),
		))
	}

	a.breaker = resilience.NewCircuitBreaker(cfg.BreakerFailureThreshold, cfg.BreakerTimeout)
	a.retrier = resilience.NewRetrier(
		resilience.RetryPolicy{
			MaxRetries: cfg.RetryMaxAttempts,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   cfg.RetryMaxDelay,
		},
		resilience.WithBreaker(a.breaker),
		resilience.WithHandler(a.handler),
		resilience.WithOperationName("llm_invocation"),
		resilience.WithLogger(a.logger),
	)

	return a
}

// Ask sends a prompt to the model provider under the agent's retry and
// circuit-breaker policy and returns the response text. Failures come back
// as classified structured errors, never raw provider errors.
func (a *Agent) Ask(ctx context.Context, prompt string) (string, error) {
	response, err := resilience.Do(ctx, a.retrier, func(ctx context.Context) (*ai.Response, error) {
		return a.provider.Invoke(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// RunTool dispatches a JSON-encoded input to the named tool. An unknown
// name is a VALIDATION error; tool failures are classified through the
// agent's handler.
func (a *Agent) RunTool(ctx context.Context, name, inputJSON string) (string, error) {
	t, ok := a.tools.Get(name)
	if !ok {
		return "", errs.New(
			fmt.Sprintf("Tool not found: %s", name),
			errs.CategoryValidation,
			errs.WithContext(map[string]any{
				"tool":            name,
				"available_tools": a.tools.Names(),
			}),
		)
	}

	output, err := t.Call(ctx, inputJSON)
	if err != nil {
		return "", a.handler.Handle(err, map[string]any{"tool": name}, "tool_execution")
	}
	return output, nil
}

// Calculate is a convenience wrapper that routes an expression through the
// calculator tool and returns its user-facing result string.
func (a *Agent) Calculate(ctx context.Context, expression string) (string, error) {
	input := fmt.Sprintf(`{"expression": %q}`, expression)
	raw, err := a.RunTool(ctx, calculator.ToolName, input)
	if err != nil {
		return "", err
	}

	parsed, err := parseToolResult(raw)
	if err != nil {
		return "", a.handler.Handle(err, map[string]any{"output": raw}, "tool_execution")
	}
	return parsed, nil
}

// parseToolResult extracts the result field from a tool's JSON output.
func parseToolResult(raw string) (string, error) {
	var output struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		return "", fmt.Errorf("invalid tool output format: %w", err)
	}
	return output.Result, nil
}

// Breaker exposes the shared model-provider circuit breaker for health
// reporting.
func (a *Agent) Breaker() *resilience.CircuitBreaker {
	return a.breaker
}

// Handler exposes the agent's error handler.
func (a *Agent) Handler() *errs.Handler {
	return a.handler
}

// Tools exposes the agent's tool catalog.
func (a *Agent) Tools() *tool.Catalog {
	return a.tools
}

// Provider exposes the agent's model provider.
func (a *Agent) Provider() ai.Provider {
	return a.provider
}

// Config exposes the agent's configuration snapshot.
func (a *Agent) Config() *config.Config {
	return a.cfg
}
