package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/agentics/core/config"
	"github.com/leofalp/agentics/core/errs"
	"github.com/leofalp/agentics/core/resilience"
	"github.com/leofalp/agentics/providers/ai"
)

// fakeProvider returns canned responses or errors and counts invocations.
type fakeProvider struct {
	content string
	err     error
	calls   int
}

func (f *fakeProvider) Invoke(ctx context.Context, prompt string) (*ai.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Response{Content: f.content}, nil
}

func (f *fakeProvider) Model() string {
	return "fake-model"
}

func testConfig() *config.Config {
	return &config.Config{
		ModelName:               "fake-model",
		ModelProvider:           config.ProviderOllama,
		OllamaBaseURL:           "http://127.0.0.1:11434",
		AgentMaxIterations:      15,
		AgentTimeout:            300 * time.Second,
		RetryMaxAttempts:        2,
		RetryBaseDelay:          time.Millisecond,
		RetryMaxDelay:           5 * time.Millisecond,
		BreakerFailureThreshold: 3,
		BreakerTimeout:          time.Minute,
		CalculatorMaxLength:     1000,
		CalculatorMaxPower:      100,
		LogLevel:                "ERROR",
	}
}

func newTestAgent(provider ai.Provider) *Agent {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testConfig(), provider, WithLogger(logger))
}

func TestAskReturnsProviderContent(t *testing.T) {
	provider := &fakeProvider{content: "Paris"}
	a := newTestAgent(provider)

	answer, err := a.Ask(context.Background(), "capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer)
	assert.Equal(t, 1, provider.calls)
}

func TestAskRetriesAndClassifiesFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	a := newTestAgent(provider)

	_, err := a.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 3, provider.calls, "RetryMaxAttempts=2 means 3 calls")

	agentErr, ok := errs.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, errs.CategoryConnectivity, agentErr.Category)
}

func TestAskOpensBreakerAfterRepeatedFailures(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	a := newTestAgent(provider)

	// One Ask records 3 failures, reaching the threshold of 3.
	_, err := a.Ask(context.Background(), "hello")
	require.Error(t, err)
	require.Equal(t, resilience.StateOpen, a.Breaker().State())

	callsBefore := provider.calls
	_, err = a.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, callsBefore, provider.calls, "open breaker must block provider calls")

	agentErr, ok := errs.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, "Service temporarily unavailable (circuit breaker open)", agentErr.Message)
}

func TestDefaultCatalogContainsCalculator(t *testing.T) {
	a := newTestAgent(&fakeProvider{})
	assert.True(t, a.Tools().Has("calculator"))
}

func TestRunToolUnknownName(t *testing.T) {
	a := newTestAgent(&fakeProvider{})

	_, err := a.RunTool(context.Background(), "teleporter", `{}`)
	require.Error(t, err)

	agentErr, ok := errs.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, errs.CategoryValidation, agentErr.Category)
	assert.Equal(t, "Tool not found: teleporter", agentErr.Message)
	assert.Equal(t, []string{"calculator"}, agentErr.Context["available_tools"])
}

func TestCalculate(t *testing.T) {
	a := newTestAgent(&fakeProvider{})

	result, err := a.Calculate(context.Background(), "10 + 5 * 2")
	require.NoError(t, err)
	assert.Equal(t, "20", result)
}

func TestCalculateSurfacesUserFacingRejection(t *testing.T) {
	a := newTestAgent(&fakeProvider{})

	// Rejections come back as the tool's formatted message, not an error.
	result, err := a.Calculate(context.Background(), "1 / 0")
	require.NoError(t, err)
	assert.Contains(t, result, "Calculator Error:")
}

func TestCalculateHandlesQuotingInExpression(t *testing.T) {
	a := newTestAgent(&fakeProvider{})

	result, err := a.Calculate(context.Background(), "(1 + 2) * 3")
	require.NoError(t, err)
	assert.Equal(t, "9", result)
}

func TestAgentSharedHandlerAccumulatesStats(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	a := newTestAgent(provider)

	_, _ = a.Ask(context.Background(), "hello")

	stats := a.Handler().Stats()
	assert.Positive(t, stats.TotalErrors)
}

func TestAccessors(t *testing.T) {
	provider := &fakeProvider{}
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(cfg, provider, WithLogger(logger))

	assert.Same(t, cfg, a.Config())
	assert.NotNil(t, a.Breaker())
	assert.NotNil(t, a.Handler())
	assert.NotNil(t, a.Tools())
	assert.Equal(t, provider, a.Provider().(*fakeProvider))
}
