package calculator

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/agentics/core/errs"
)

func quietErrHandler() *errs.Handler {
	return errs.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func callTool(t *testing.T, inputJSON string) Output {
	t.Helper()
	calcTool := NewTool(quietErrHandler())

	raw, err := calcTool.Call(context.Background(), inputJSON)
	require.NoError(t, err, "tool failures surface in the output, never as raw errors")

	var output Output
	require.NoError(t, json.Unmarshal([]byte(raw), &output))
	return output
}

func TestToolInfo(t *testing.T) {
	calcTool := NewTool(quietErrHandler())
	info := calcTool.ToolInfo()

	assert.Equal(t, "calculator", info.Name)
	assert.NotEmpty(t, info.Description)
	require.NotNil(t, info.Parameters)
	assert.Contains(t, info.Parameters.Required, "expression")
}

func TestToolEvaluates(t *testing.T) {
	output := callTool(t, `{"expression": "10 + 5 * 2"}`)
	assert.Equal(t, "20", output.Result)
}

func TestToolFormatsResults(t *testing.T) {
	tests := []struct {
		expression string
		expected   string
	}{
		{"2 + 2", "4"},
		{"10 / 4", "2.5"},
		{"1000000 * 2", "2000000"}, // no scientific notation
		{"0.1 + 0.2", "0.30000000000000004"},
		{"10 / 3", "3.3333333333333335"},
		{"-5 - 5", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			output := callTool(t, `{"expression": "`+tt.expression+`"}`)
			assert.Equal(t, tt.expected, output.Result)
		})
	}
}

func TestToolReturnsUserFacingErrorInOutput(t *testing.T) {
	output := callTool(t, `{"expression": "1 / 0"}`)

	assert.True(t, strings.HasPrefix(output.Result, "Calculator Error: "), "got %q", output.Result)
	assert.Contains(t, output.Result, errs.CategoryComputation.UserMessage())
	assert.Contains(t, output.Result, "Suggestions:")
}

func TestToolSecurityRejection(t *testing.T) {
	output := callTool(t, `{"expression": "__import__"}`)
	assert.Contains(t, output.Result, errs.CategorySecurity.UserMessage())
}

func TestToolRespectsConfiguredLimits(t *testing.T) {
	calcTool := NewTool(quietErrHandler(), WithMaxExpressionLength(15))

	raw, err := calcTool.Call(context.Background(), `{"expression": "1 + 1 + 1 + 1 + 1 + 1"}`)
	require.NoError(t, err)

	var output Output
	require.NoError(t, json.Unmarshal([]byte(raw), &output))
	assert.Contains(t, output.Result, errs.CategorySecurity.UserMessage())
}

func TestFormatUserErrorTruncatesSuggestions(t *testing.T) {
	message := FormatUserError(errs.New("Division by zero", errs.CategoryComputation))

	assert.True(t, strings.HasPrefix(message, "Calculator Error: "))
	assert.Equal(t, 2, strings.Count(message, "\n• "), "at most two suggestions are shown")
}

func TestFormatUserErrorPlainError(t *testing.T) {
	message := FormatUserError(io.ErrUnexpectedEOF)
	assert.Contains(t, message, errs.CategoryUnknown.UserMessage())
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{4, "4"},
		{2.5, "2.5"},
		{2e6, "2000000"},
		{-0.5, "-0.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatResult(tt.value))
	}
}
