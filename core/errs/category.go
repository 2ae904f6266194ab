package errs

// ErrorCategory classifies a failure so callers can pick an appropriate
// handling strategy (retry, abort, surface to the user). The set of
// categories is closed; adding one requires updating the switches below,
// which the exhaustiveness of the default clauses makes easy to audit.
type ErrorCategory string

const (
	CategoryConnectivity  ErrorCategory = "connectivity"
	CategoryValidation    ErrorCategory = "validation"
	CategoryComputation   ErrorCategory = "computation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategorySecurity      ErrorCategory = "security"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryResource      ErrorCategory = "resource"
	CategoryUnknown       ErrorCategory = "unknown"
)

// Retryable reports whether operations failing with this category may be
// retried. SECURITY and VALIDATION failures are user-input problems;
// retrying the same input cannot succeed.
func (c ErrorCategory) Retryable() bool {
	switch c {
	case CategorySecurity, CategoryValidation:
		return false
	default:
		return true
	}
}

// UserMessage returns the fixed user-facing message template for the category.
func (c ErrorCategory) UserMessage() string {
	switch c {
	case CategoryConnectivity:
		return "I'm having trouble connecting to the AI service. This is usually temporary."
	case CategoryValidation:
		return "There seems to be an issue with the input provided. Please check and try again."
	case CategoryComputation:
		return "I encountered an error while processing your calculation."
	case CategoryConfiguration:
		return "There's a configuration issue that needs to be resolved."
	case CategorySecurity:
		return "I blocked this request for security reasons."
	case CategoryTimeout:
		return "The operation is taking longer than expected. Please try a simpler request."
	case CategoryResource:
		return "System resources are currently limited. Please try again shortly."
	case CategoryUnknown:
		return "I encountered an unexpected issue."
	default:
		return "An error occurred while processing your request."
	}
}

// RecoverySuggestions returns the fixed, ordered list of recovery suggestions
// for the category. The slice is freshly allocated on each call so callers may
// truncate or modify it freely.
func (c ErrorCategory) RecoverySuggestions() []string {
	switch c {
	case CategoryConnectivity:
		return []string{
			"Wait a moment and try again",
			"Check if your internet connection is stable",
			"Try using the calculator tool directly with simple math expressions",
		}
	case CategoryValidation:
		return []string{
			"Double-check your input for typos or formatting issues",
			"Try rephrasing your question",
			"Use simpler mathematical expressions",
		}
	case CategoryComputation:
		return []string{
			"Try breaking your calculation into smaller parts",
			"Verify the mathematical expression is valid",
			"Use parentheses to clarify operation order",
		}
	case CategoryConfiguration:
		return []string{
			"Contact your system administrator",
			"Check if required services are running",
			"Verify environment variables are set correctly",
		}
	case CategorySecurity:
		return []string{
			"Review your input for potentially dangerous content",
			"Stick to mathematical expressions and simple questions",
			"Avoid using system commands or code snippets",
		}
	case CategoryTimeout:
		return []string{
			"Try a simpler version of your request",
			"Break complex problems into smaller parts",
			"Wait a moment before retrying",
		}
	case CategoryResource:
		return []string{
			"Wait a few moments and try again",
			"Try a simpler request that requires fewer resources",
			"Contact support if the issue persists",
		}
	case CategoryUnknown:
		return []string{
			"Try rephrasing your request",
			"Wait a moment and try again",
			"Contact support with the error details if the problem persists",
		}
	default:
		return []string{"Try again or contact support if the issue persists"}
	}
}
