package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/agentics/core/errs"
)

// clearAgentEnv unsets every variable this package reads so tests see
// defaults regardless of the developer's shell.
func clearAgentEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AGENT_MODEL", "AGENT_PROVIDER", "AGENT_TEMPERATURE",
		"OLLAMA_BASE_URL", "OPENAI_API_KEY", "OPENAI_API_BASE",
		"LITELLM_KEY", "LITELLM_BASE_URL",
		"AGENT_VERBOSE", "AGENT_MAX_ITERATIONS", "AGENT_TIMEOUT",
		"RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY", "RETRY_MAX_DELAY",
		"CIRCUIT_BREAKER_FAILURE_THRESHOLD", "CIRCUIT_BREAKER_TIMEOUT",
		"CALCULATOR_MAX_LENGTH", "CALCULATOR_MAX_POWER",
		"LOG_LEVEL", "MEMORY_KEY", "MEMORY_RETURN_MESSAGES",
	} {
		t.Setenv(key, "")
	}
	// t.Setenv(key, "") leaves the variable set-but-empty; FromEnv treats
	// a set variable as authoritative, so point the ones with non-empty
	// defaults back at those defaults explicitly.
	t.Setenv("AGENT_MODEL", "llama3.2:3b")
	t.Setenv("AGENT_PROVIDER", "ollama")
	t.Setenv("OLLAMA_BASE_URL", "http://127.0.0.1:11434")
	t.Setenv("LITELLM_BASE_URL", "http://127.0.0.1:4000")
	t.Setenv("LOG_LEVEL", "INFO")
	t.Setenv("MEMORY_KEY", "chat_history")
}

func TestFromEnvDefaults(t *testing.T) {
	clearAgentEnv(t)

	cfg := FromEnv()

	assert.Equal(t, "llama3.2:3b", cfg.ModelName)
	assert.Equal(t, ProviderOllama, cfg.ModelProvider)
	assert.Zero(t, cfg.ModelTemperature)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 60*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 60*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, 1000, cfg.CalculatorMaxLength)
	assert.Equal(t, 100, cfg.CalculatorMaxPower)
	assert.Equal(t, 15, cfg.AgentMaxIterations)
	assert.Equal(t, 300*time.Second, cfg.AgentTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)

	assert.Empty(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv("AGENT_MODEL", "gpt-4o-mini")
	t.Setenv("AGENT_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AGENT_TEMPERATURE", "0.7")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BASE_DELAY", "0.5")
	t.Setenv("CIRCUIT_BREAKER_FAILURE_THRESHOLD", "2")
	t.Setenv("CALCULATOR_MAX_LENGTH", "200")
	t.Setenv("AGENT_VERBOSE", "false")

	cfg := FromEnv()

	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
	assert.Equal(t, ProviderOpenAI, cfg.ModelProvider)
	assert.InDelta(t, 0.7, cfg.ModelTemperature, 1e-9)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 2, cfg.BreakerFailureThreshold)
	assert.Equal(t, 200, cfg.CalculatorMaxLength)
	assert.False(t, cfg.AgentVerbose)

	assert.Empty(t, cfg.Validate())
}

func TestFromEnvUnparseableValuesFallBack(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv("RETRY_MAX_ATTEMPTS", "many")
	t.Setenv("AGENT_TEMPERATURE", "warm")
	t.Setenv("RETRY_BASE_DELAY", "soon")

	cfg := FromEnv()
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Zero(t, cfg.ModelTemperature)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
}

func TestValidateViolations(t *testing.T) {
	base := func() *Config {
		clearAgentEnv(t)
		return FromEnv()
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		fragment string
	}{
		{"empty model", func(c *Config) { c.ModelName = "" }, "AGENT_MODEL cannot be empty"},
		{"bad provider", func(c *Config) { c.ModelProvider = "mystery" }, "AGENT_PROVIDER must be one of"},
		{"temperature too high", func(c *Config) { c.ModelTemperature = 2.5 }, "AGENT_TEMPERATURE must be between"},
		{"temperature negative", func(c *Config) { c.ModelTemperature = -0.1 }, "AGENT_TEMPERATURE must be between"},
		{"ollama without base url", func(c *Config) { c.OllamaBaseURL = "" }, "OLLAMA_BASE_URL is required"},
		{"openai without key", func(c *Config) {
			c.ModelProvider = ProviderOpenAI
			c.OpenAIAPIKey = ""
		}, "OPENAI_API_KEY is required"},
		{"litellm without key", func(c *Config) {
			c.ModelProvider = ProviderLiteLLM
			c.LiteLLMKey = ""
		}, "LITELLM_KEY is required"},
		{"max iterations", func(c *Config) { c.AgentMaxIterations = 0 }, "AGENT_MAX_ITERATIONS must be >= 1"},
		{"agent timeout", func(c *Config) { c.AgentTimeout = 0 }, "AGENT_TIMEOUT must be >= 1s"},
		{"retry attempts", func(c *Config) { c.RetryMaxAttempts = 0 }, "RETRY_MAX_ATTEMPTS must be >= 1"},
		{"retry base delay", func(c *Config) { c.RetryBaseDelay = 0 }, "RETRY_BASE_DELAY must be > 0"},
		{"max delay not above base", func(c *Config) {
			c.RetryBaseDelay = 2 * time.Second
			c.RetryMaxDelay = 2 * time.Second
		}, "RETRY_MAX_DELAY must be > RETRY_BASE_DELAY"},
		{"breaker threshold", func(c *Config) { c.BreakerFailureThreshold = 0 }, "CIRCUIT_BREAKER_FAILURE_THRESHOLD must be >= 1"},
		{"breaker timeout", func(c *Config) { c.BreakerTimeout = 0 }, "CIRCUIT_BREAKER_TIMEOUT must be >= 1s"},
		{"calculator length", func(c *Config) { c.CalculatorMaxLength = 5 }, "CALCULATOR_MAX_LENGTH must be >= 10"},
		{"calculator power", func(c *Config) { c.CalculatorMaxPower = 0 }, "CALCULATOR_MAX_POWER must be >= 1"},
		{"log level", func(c *Config) { c.LogLevel = "CHATTY" }, "LOG_LEVEL must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			violations := cfg.Validate()
			require.NotEmpty(t, violations)
			assert.Contains(t, strings.Join(violations, "\n"), tt.fragment)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	clearAgentEnv(t)
	cfg := FromEnv()
	cfg.ModelName = ""
	cfg.RetryMaxAttempts = 0
	cfg.CalculatorMaxLength = 1

	violations := cfg.Validate()
	assert.Len(t, violations, 3, "every violation is reported, not just the first")
}

func TestLoadFailsFastWithConfigurationError(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv("AGENT_PROVIDER", "openai")
	// OPENAI_API_KEY intentionally left empty.

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)

	agentErr, ok := errs.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, errs.CategoryConfiguration, agentErr.Category)
	assert.Contains(t, agentErr.Message, "OPENAI_API_KEY is required")
	assert.NotEmpty(t, agentErr.Context["validation_errors"])
}

func TestLoadSucceedsWithDefaults(t *testing.T) {
	clearAgentEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.ModelProvider)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.expected, cfg.SlogLevel(), "level %q", tt.level)
	}
}

func TestBaseURLAndAPIKeyPerProvider(t *testing.T) {
	cfg := &Config{
		ModelProvider:  ProviderOllama,
		OllamaBaseURL:  "http://127.0.0.1:11434",
		OpenAIAPIKey:   "sk-test",
		LiteLLMKey:     "llm-key",
		LiteLLMBaseURL: "http://127.0.0.1:4000",
	}

	assert.Equal(t, "http://127.0.0.1:11434", cfg.BaseURL())
	assert.Empty(t, cfg.APIKey())

	cfg.ModelProvider = ProviderOpenAI
	assert.Equal(t, "https://api.openai.com", cfg.BaseURL())
	assert.Equal(t, "sk-test", cfg.APIKey())

	cfg.OpenAIAPIBase = "https://proxy.internal"
	assert.Equal(t, "https://proxy.internal", cfg.BaseURL())

	cfg.ModelProvider = ProviderLiteLLM
	assert.Equal(t, "http://127.0.0.1:4000", cfg.BaseURL())
	assert.Equal(t, "llm-key", cfg.APIKey())
}
