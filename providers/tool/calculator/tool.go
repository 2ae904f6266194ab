package calculator

import (
	"context"
	"strconv"
	"strings"

	"github.com/leofalp/agentics/core/errs"
	"github.com/leofalp/agentics/core/resilience"
	"github.com/leofalp/agentics/providers/tool"
)

// ToolName is the registry name under which the calculator is exposed.
const ToolName = "calculator"

// toolMaxRetries bounds retries inside the tool itself. Evaluation is
// deterministic, so VALIDATION and SECURITY failures abort on the first
// attempt anyway; the retrier mainly contributes classification and logging.
const toolMaxRetries = 2

// Input is the tool's argument shape as advertised to the model.
type Input struct {
	Expression string `json:"expression" jsonschema:"description=Mathematical expression to evaluate,required"`
}

// Output carries the calculation result, or a user-facing error message
// when evaluation was rejected.
type Output struct {
	Result string `json:"result" jsonschema:"description=The result of the calculation"`
}

// NewTool wraps a Calculator as an agent tool named "calculator".
//
// Failures never propagate as raw errors to the model: evaluation runs
// under a retrier that classifies and logs through handler, and rejected
// expressions come back as a formatted user-facing message in the tool
// output, never a stack of internal error text.
func NewTool(handler *errs.Handler, options ...Option) *tool.Tool[Input, Output] {
	calc := New(options...)
	retrier := resilience.NewRetrier(
		resilience.RetryPolicy{MaxRetries: toolMaxRetries},
		resilience.WithHandler(handler),
		resilience.WithOperationName("calculator_tool"),
	)

	run := func(ctx context.Context, input Input) (Output, error) {
		result, err := resilience.Do(ctx, retrier, func(context.Context) (float64, error) {
			return calc.Evaluate(input.Expression)
		})
		if err != nil {
			return Output{Result: FormatUserError(err)}, nil
		}
		return Output{Result: FormatResult(result)}, nil
	}

	return tool.NewTool(ToolName, run,
		tool.WithDescription("Useful for when you need to answer questions about math"),
	)
}

// FormatResult renders a result the way a user would write it: integral
// values without a trailing ".0", everything else with the fewest digits
// that round-trip.
func FormatResult(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// FormatUserError renders a failed evaluation as the user-facing string
// returned in the tool output: a fixed prefix, the category's user message,
// and up to two leading recovery suggestions.
func FormatUserError(err error) string {
	agentErr, ok := errs.AsAgentError(err)
	if !ok {
		agentErr = errs.New(err.Error(), errs.CategoryUnknown)
	}

	var sb strings.Builder
	sb.WriteString("Calculator Error: ")
	sb.WriteString(agentErr.UserMessage)

	suggestions := agentErr.RecoverySuggestions
	if len(suggestions) > 2 {
		suggestions = suggestions[:2]
	}
	if len(suggestions) > 0 {
		sb.WriteString("\n\nSuggestions:")
		for _, suggestion := range suggestions {
			sb.WriteString("\n• ")
			sb.WriteString(suggestion)
		}
	}

	return sb.String()
}
