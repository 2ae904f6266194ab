// Package config loads and validates the agent's settings from process
// environment variables. The environment is read once at startup into a
// Config snapshot; it is never reloaded. Validation collects every violated
// constraint and fails fast with a single CONFIGURATION structured error.
//
// Demo binaries load a .env file first via github.com/joho/godotenv/autoload;
// this package itself only reads the process environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leofalp/agentics/core/errs"
)

// Supported model providers for AGENT_PROVIDER.
const (
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
	ProviderLiteLLM = "litellm"
)

// Config is the env-derived configuration snapshot consumed across the
// agent: model selection, retry and circuit-breaker thresholds, calculator
// limits, and logging settings.
type Config struct {
	// Model
	ModelName        string  // AGENT_MODEL
	ModelProvider    string  // AGENT_PROVIDER
	ModelTemperature float64 // AGENT_TEMPERATURE

	// API endpoints
	OllamaBaseURL  string // OLLAMA_BASE_URL
	OpenAIAPIKey   string // OPENAI_API_KEY
	OpenAIAPIBase  string // OPENAI_API_BASE
	LiteLLMKey     string // LITELLM_KEY
	LiteLLMBaseURL string // LITELLM_BASE_URL

	// Agent behaviour
	AgentVerbose       bool          // AGENT_VERBOSE
	AgentMaxIterations int           // AGENT_MAX_ITERATIONS
	AgentTimeout       time.Duration // AGENT_TIMEOUT (seconds)

	// Retry
	RetryMaxAttempts int           // RETRY_MAX_ATTEMPTS
	RetryBaseDelay   time.Duration // RETRY_BASE_DELAY (seconds, fractional allowed)
	RetryMaxDelay    time.Duration // RETRY_MAX_DELAY (seconds, fractional allowed)

	// Circuit breaker
	BreakerFailureThreshold int           // CIRCUIT_BREAKER_FAILURE_THRESHOLD
	BreakerTimeout          time.Duration // CIRCUIT_BREAKER_TIMEOUT (seconds)

	// Calculator
	CalculatorMaxLength int // CALCULATOR_MAX_LENGTH
	CalculatorMaxPower  int // CALCULATOR_MAX_POWER

	// Logging
	LogLevel string // LOG_LEVEL

	// Memory (conversation store collaborator)
	MemoryKey            string // MEMORY_KEY
	MemoryReturnMessages bool   // MEMORY_RETURN_MESSAGES
}

// FromEnv snapshots the process environment into a Config without
// validating it. Unset or unparseable variables fall back to defaults.
func FromEnv() *Config {
	return &Config{
		ModelName:        envString("AGENT_MODEL", "llama3.2:3b"),
		ModelProvider:    envString("AGENT_PROVIDER", ProviderOllama),
		ModelTemperature: envFloat("AGENT_TEMPERATURE", 0.0),

		OllamaBaseURL:  envString("OLLAMA_BASE_URL", "http://127.0.0.1:11434"),
		OpenAIAPIKey:   envString("OPENAI_API_KEY", ""),
		OpenAIAPIBase:  envString("OPENAI_API_BASE", ""),
		LiteLLMKey:     envString("LITELLM_KEY", ""),
		LiteLLMBaseURL: envString("LITELLM_BASE_URL", "http://127.0.0.1:4000"),

		AgentVerbose:       envBool("AGENT_VERBOSE", true),
		AgentMaxIterations: envInt("AGENT_MAX_ITERATIONS", 15),
		AgentTimeout:       envSeconds("AGENT_TIMEOUT", 300*time.Second),

		RetryMaxAttempts: envInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   envSeconds("RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:    envSeconds("RETRY_MAX_DELAY", 60*time.Second),

		BreakerFailureThreshold: envInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          envSeconds("CIRCUIT_BREAKER_TIMEOUT", 60*time.Second),

		CalculatorMaxLength: envInt("CALCULATOR_MAX_LENGTH", 1000),
		CalculatorMaxPower:  envInt("CALCULATOR_MAX_POWER", 100),

		LogLevel: envString("LOG_LEVEL", "INFO"),

		MemoryKey:            envString("MEMORY_KEY", "chat_history"),
		MemoryReturnMessages: envBool("MEMORY_RETURN_MESSAGES", true),
	}
}

// Load snapshots the environment and validates the result. On any violated
// constraint it returns a CONFIGURATION AgentError enumerating every
// violation, so a misconfigured process fails fast with the full picture.
func Load() (*Config, error) {
	cfg := FromEnv()

	violations := cfg.Validate()
	if len(violations) == 0 {
		return cfg, nil
	}

	return nil, errs.New(
		"Configuration validation failed:\n  - "+strings.Join(violations, "\n  - "),
		errs.CategoryConfiguration,
		errs.WithContext(map[string]any{"validation_errors": violations}),
		errs.WithUserMessage("The agent configuration has invalid settings. Please check your environment variables."),
		errs.WithSuggestions([]string{
			"Review and correct the environment variables mentioned in the errors",
			"Check the documentation for valid configuration values",
			"Ensure all required environment variables are set for your chosen provider",
		}),
	)
}

// Validate checks every setting and returns one message per violation.
// An empty slice means the configuration is usable.
func (c *Config) Validate() []string {
	var violations []string

	if c.ModelName == "" {
		violations = append(violations, "AGENT_MODEL cannot be empty")
	}

	switch c.ModelProvider {
	case ProviderOllama, ProviderOpenAI, ProviderLiteLLM:
	default:
		violations = append(violations, fmt.Sprintf(
			"AGENT_PROVIDER must be one of: ollama, openai, litellm. Got: %s", c.ModelProvider))
	}

	if c.ModelTemperature < 0.0 || c.ModelTemperature > 2.0 {
		violations = append(violations, fmt.Sprintf(
			"AGENT_TEMPERATURE must be between 0.0 and 2.0. Got: %g", c.ModelTemperature))
	}

	if c.ModelProvider == ProviderOllama && c.OllamaBaseURL == "" {
		violations = append(violations, "OLLAMA_BASE_URL is required when using ollama provider")
	}
	if c.ModelProvider == ProviderOpenAI && c.OpenAIAPIKey == "" {
		violations = append(violations, "OPENAI_API_KEY is required when using openai provider")
	}
	if c.ModelProvider == ProviderLiteLLM && c.LiteLLMKey == "" {
		violations = append(violations, "LITELLM_KEY is required when using litellm provider")
	}

	if c.AgentMaxIterations < 1 {
		violations = append(violations, fmt.Sprintf(
			"AGENT_MAX_ITERATIONS must be >= 1. Got: %d", c.AgentMaxIterations))
	}
	if c.AgentTimeout < time.Second {
		violations = append(violations, fmt.Sprintf(
			"AGENT_TIMEOUT must be >= 1s. Got: %s", c.AgentTimeout))
	}

	if c.RetryMaxAttempts < 1 {
		violations = append(violations, fmt.Sprintf(
			"RETRY_MAX_ATTEMPTS must be >= 1. Got: %d", c.RetryMaxAttempts))
	}
	if c.RetryBaseDelay <= 0 {
		violations = append(violations, fmt.Sprintf(
			"RETRY_BASE_DELAY must be > 0. Got: %s", c.RetryBaseDelay))
	}
	if c.RetryMaxDelay <= c.RetryBaseDelay {
		violations = append(violations, fmt.Sprintf(
			"RETRY_MAX_DELAY must be > RETRY_BASE_DELAY. Got: %s <= %s", c.RetryMaxDelay, c.RetryBaseDelay))
	}

	if c.BreakerFailureThreshold < 1 {
		violations = append(violations, fmt.Sprintf(
			"CIRCUIT_BREAKER_FAILURE_THRESHOLD must be >= 1. Got: %d", c.BreakerFailureThreshold))
	}
	if c.BreakerTimeout < time.Second {
		violations = append(violations, fmt.Sprintf(
			"CIRCUIT_BREAKER_TIMEOUT must be >= 1s. Got: %s", c.BreakerTimeout))
	}

	if c.CalculatorMaxLength < 10 {
		violations = append(violations, fmt.Sprintf(
			"CALCULATOR_MAX_LENGTH must be >= 10. Got: %d", c.CalculatorMaxLength))
	}
	if c.CalculatorMaxPower < 1 {
		violations = append(violations, fmt.Sprintf(
			"CALCULATOR_MAX_POWER must be >= 1. Got: %d", c.CalculatorMaxPower))
	}

	if _, ok := parseLogLevel(c.LogLevel); !ok {
		violations = append(violations, fmt.Sprintf(
			"LOG_LEVEL must be one of: DEBUG, INFO, WARNING, ERROR. Got: %s", c.LogLevel))
	}

	return violations
}

// SlogLevel maps the configured LOG_LEVEL onto a slog.Level.
// Unrecognised values fall back to Info; Validate reports them separately.
func (c *Config) SlogLevel() slog.Level {
	level, ok := parseLogLevel(c.LogLevel)
	if !ok {
		return slog.LevelInfo
	}
	return level
}

// BaseURL returns the chat endpoint base URL for the configured provider.
func (c *Config) BaseURL() string {
	switch c.ModelProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIBase != "" {
			return c.OpenAIAPIBase
		}
		return "https://api.openai.com"
	case ProviderLiteLLM:
		return c.LiteLLMBaseURL
	default:
		return c.OllamaBaseURL
	}
}

// APIKey returns the credential for the configured provider, empty for ollama.
func (c *Config) APIKey() string {
	switch c.ModelProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderLiteLLM:
		return c.LiteLLMKey
	default:
		return ""
	}
}

func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARNING", "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// envSeconds reads a duration expressed as a (possibly fractional) number of
// seconds, e.g. RETRY_BASE_DELAY=1.5.
func envSeconds(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return time.Duration(parsed * float64(time.Second))
}
