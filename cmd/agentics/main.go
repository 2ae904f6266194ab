// Command agentics is a small demo driver for the agent: it evaluates
// calculator expressions, runs the health report, or sends a single prompt
// to the configured model provider.
//
// Usage:
//
//	agentics calc "10 + 5 * 2"
//	agentics health
//	agentics ask "What is the capital of France?"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"

	"github.com/leofalp/agentics/core/agent"
	"github.com/leofalp/agentics/core/config"
	"github.com/leofalp/agentics/core/health"
	"github.com/leofalp/agentics/providers/ai/openaichat"
)

func main() {
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// Config load failed before the logger level is known; log with
		// defaults and bail.
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, nil)))
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := cfg.SlogLevel()
	if *isDebug {
		slogLevel = slog.LevelDebug
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	provider := openaichat.New(cfg.BaseURL(), cfg.ModelName,
		openaichat.WithAPIKey(cfg.APIKey()),
		openaichat.WithTemperature(cfg.ModelTemperature),
	)
	app := agent.New(cfg, provider, agent.WithLogger(logger))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.AgentTimeout)
	defer timeoutCancel()

	switch flag.Arg(0) {
	case "calc":
		expression := flag.Arg(1)
		if expression == "" {
			fmt.Fprintln(os.Stderr, "usage: agentics calc <expression>")
			os.Exit(2)
		}
		result, err := app.Calculate(ctx, expression)
		if err != nil {
			logger.Error("Calculation failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(result)

	case "health":
		checker := health.NewChecker(
			health.WithProvider(provider),
			health.WithTools(app.Tools()),
			health.WithBreaker(app.Breaker()),
			health.WithHandler(app.Handler()),
			health.WithConfig(cfg),
		)
		report := checker.CheckAll(ctx)
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Error("Failed to encode health report", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(encoded))
		if report.Overall == health.StatusUnhealthy {
			os.Exit(1)
		}

	case "ask":
		prompt := flag.Arg(1)
		if prompt == "" {
			fmt.Fprintln(os.Stderr, "usage: agentics ask <prompt>")
			os.Exit(2)
		}
		answer, err := app.Ask(ctx, prompt)
		if err != nil {
			logger.Error("Model invocation failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(answer)

	default:
		fmt.Fprintln(os.Stderr, "usage: agentics [-debug] calc <expression> | health | ask <prompt>")
		os.Exit(2)
	}
}
