package calculator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/leofalp/agentics/core/errs"
	"github.com/leofalp/agentics/internal/utils"
)

const (
	// DefaultMaxExpressionLength caps expression size before parsing.
	DefaultMaxExpressionLength = 1000
	// DefaultMaxPower caps the absolute exponent accepted by the power
	// operator.
	DefaultMaxPower = 100
)

// dangerousPatterns are scanned case-insensitively anywhere in the raw
// expression before any other text processing. They are high-signal
// injection markers; the character whitelist below is the hard backstop
// independent of this list's completeness.
var dangerousPatterns = []string{"__", "import", "exec", "eval", "open", "file", "input", "raw_input"}

// allowedChars is the full character whitelist for expressions.
const allowedChars = "0123456789+-*/%.() \t\n"

// Calculator safely evaluates arithmetic expressions. The zero limits are
// replaced by the defaults above; construct instances with [New].
type Calculator struct {
	maxExpressionLength int
	maxPower            int
}

// Option customises a Calculator.
type Option func(*Calculator)

// WithMaxExpressionLength overrides the expression length cap.
func WithMaxExpressionLength(limit int) Option {
	return func(c *Calculator) {
		c.maxExpressionLength = limit
	}
}

// WithMaxPower overrides the largest absolute exponent accepted by the
// power operator.
func WithMaxPower(limit int) Option {
	return func(c *Calculator) {
		c.maxPower = limit
	}
}

// New returns a Calculator with the default limits, adjusted by options.
func New(options ...Option) *Calculator {
	calc := &Calculator{
		maxExpressionLength: DefaultMaxExpressionLength,
		maxPower:            DefaultMaxPower,
	}
	for _, option := range options {
		option(calc)
	}
	return calc
}

// Evaluate parses and evaluates expression, failing with a classified
// structured error rather than a raw parser or math failure.
//
// The validation pipeline runs in a fixed order, first failure wins:
// emptiness (VALIDATION), length cap (SECURITY), denylist scan (SECURITY),
// character whitelist (VALIDATION), parse (VALIDATION), evaluation with
// division-by-zero (COMPUTATION) and exponent-size (SECURITY) guards, and a
// final finiteness check on the result (COMPUTATION). Reordering the checks
// changes the reported category for identical inputs, so the order is part
// of the observable contract.
func (c *Calculator) Evaluate(expression string) (float64, error) {
	if strings.TrimSpace(expression) == "" {
		return 0, errs.New("Expression cannot be empty", errs.CategoryValidation,
			errs.WithContext(map[string]any{"expression_length": len(expression)}),
		)
	}

	if len(expression) > c.maxExpressionLength {
		return 0, errs.New("Expression too long (security limit)", errs.CategorySecurity,
			errs.WithContext(map[string]any{
				"expression_length": len(expression),
				"limit":             c.maxExpressionLength,
			}),
		)
	}

	lowered := strings.ToLower(expression)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return 0, errs.New(
				fmt.Sprintf("Potentially dangerous pattern detected: %s", pattern),
				errs.CategorySecurity,
				errs.WithContext(map[string]any{
					"detected_pattern": pattern,
					"expression":       utils.TruncateString(expression, 100),
				}),
			)
		}
	}

	if invalid := invalidChars(expression); len(invalid) > 0 {
		return 0, errs.New(
			fmt.Sprintf("Invalid characters in expression: %s", strings.Join(invalid, ", ")),
			errs.CategoryValidation,
			errs.WithContext(map[string]any{"invalid_chars": invalid}),
		)
	}

	root, err := parseExpression(expression)
	if err != nil {
		return 0, errs.New(
			fmt.Sprintf("Invalid mathematical expression: %v", err),
			errs.CategoryValidation,
			errs.WithContext(map[string]any{
				"syntax_error": err.Error(),
				"expression":   utils.TruncateString(expression, 100),
			}),
			errs.WithCause(err),
		)
	}

	result, err := c.evalNode(root)
	if err != nil {
		return 0, err
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, errs.New("Result is infinite or not a number", errs.CategoryComputation,
			errs.WithContext(map[string]any{"result": fmt.Sprint(result)}),
		)
	}

	return result, nil
}

// invalidChars returns the distinct characters of expression outside the
// whitelist, sorted for deterministic error messages.
func invalidChars(expression string) []string {
	seen := map[rune]bool{}
	var invalid []string
	for _, r := range expression {
		if seen[r] {
			continue
		}
		seen[r] = true
		if !strings.ContainsRune(allowedChars, r) {
			invalid = append(invalid, string(r))
		}
	}
	sort.Strings(invalid)
	return invalid
}

// evalNode evaluates the expression tree post-order: operands first, then
// the operator, with guards applied before the operator runs.
func (c *Calculator) evalNode(n node) (float64, error) {
	switch n := n.(type) {
	case literal:
		return n.value, nil

	case unaryOp:
		operand, err := c.evalNode(n.operand)
		if err != nil {
			return 0, err
		}
		if n.negate {
			return -operand, nil
		}
		return operand, nil

	case binaryOp:
		left, err := c.evalNode(n.left)
		if err != nil {
			return 0, err
		}
		right, err := c.evalNode(n.right)
		if err != nil {
			return 0, err
		}
		return c.applyBinary(n.op, left, right)

	default:
		return 0, errs.New(
			fmt.Sprintf("Unsupported node type: %T", n),
			errs.CategoryValidation,
			errs.WithContext(map[string]any{"node_type": fmt.Sprintf("%T", n)}),
		)
	}
}

func (c *Calculator) applyBinary(op binOp, left, right float64) (float64, error) {
	switch op {
	case opAdd:
		return left + right, nil
	case opSub:
		return left - right, nil
	case opMul:
		return left * right, nil

	case opDiv, opFloorDiv, opMod:
		if right == 0 {
			return 0, errs.New("Division by zero", errs.CategoryComputation,
				errs.WithContext(map[string]any{
					"left_operand": left,
					"operation":    op.String(),
				}),
			)
		}
		switch op {
		case opDiv:
			return left / right, nil
		case opFloorDiv:
			return math.Floor(left / right), nil
		default:
			return floorMod(left, right), nil
		}

	case opPow:
		// DoS guard: reject huge exponents before computing the power.
		if math.Abs(right) > float64(c.maxPower) {
			return 0, errs.New("Power operation too large (security limit)", errs.CategorySecurity,
				errs.WithContext(map[string]any{
					"base":     left,
					"exponent": right,
					"limit":    c.maxPower,
				}),
			)
		}
		return math.Pow(left, right), nil

	default:
		return 0, errs.New(
			fmt.Sprintf("Unsupported operation: %s", op),
			errs.CategoryValidation,
			errs.WithContext(map[string]any{"operation": op.String()}),
		)
	}
}

// floorMod is the floored modulo: the remainder takes the sign of the
// divisor, so -7 % 3 == 2 and 7 % -3 == -2. math.Mod truncates instead.
func floorMod(a, b float64) float64 {
	remainder := math.Mod(a, b)
	if remainder != 0 && (remainder < 0) != (b < 0) {
		remainder += b
	}
	return remainder
}
