package errs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// keywordGroup binds an ordered list of message substrings to a category.
type keywordGroup struct {
	category ErrorCategory
	keywords []string
}

// classificationOrder is matched top to bottom, first hit wins. The ordering
// is load-bearing: a message containing both "timeout" and "invalid" is
// CONNECTIVITY, not VALIDATION, and retry suppression depends on that.
var classificationOrder = []keywordGroup{
	{CategoryConnectivity, []string{"connection", "network", "timeout", "refused", "unreachable"}},
	{CategoryValidation, []string{"invalid", "malformed", "syntax", "format", "parse"}},
	{CategoryComputation, []string{"division by zero", "math domain", "overflow", "calculation"}},
	{CategorySecurity, []string{"dangerous", "security", "blocked", "forbidden", "injection"}},
	{CategoryTimeout, []string{"timeout", "time out"}},
	{CategoryResource, []string{"memory", "resource", "limit", "quota", "capacity"}},
	{CategoryConfiguration, []string{"config", "environment", "missing", "not found"}},
}

// Classify maps a raw error onto an ErrorCategory by scanning its lowercased
// message against ordered keyword groups. It is a best-effort heuristic, not
// an exhaustive mapping; anything unmatched is CategoryUnknown.
func Classify(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	message := strings.ToLower(err.Error())
	for _, group := range classificationOrder {
		for _, keyword := range group.keywords {
			if strings.Contains(message, keyword) {
				return group.category
			}
		}
	}

	return CategoryUnknown
}

// logLevel maps a category to the slog severity used when handling an error
// of that category.
func logLevel(category ErrorCategory) slog.Level {
	switch category {
	case CategorySecurity, CategoryConfiguration, CategoryUnknown:
		return slog.LevelError
	case CategoryConnectivity, CategoryTimeout, CategoryResource:
		return slog.LevelWarn
	case CategoryValidation, CategoryComputation:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// Handler classifies raw failures into AgentErrors, tracks per-category
// occurrence counts, and writes one structured log line per handled error.
//
// Construct isolated instances with [NewHandler]; the counters are owned by
// the instance, so tests (and independent subsystems) do not share state.
type Handler struct {
	logger *slog.Logger

	mu          sync.Mutex
	errorCounts map[string]int
}

// NewHandler returns a Handler that logs through the given logger.
// A nil logger falls back to slog.Default().
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		errorCounts: map[string]int{},
	}
}

// Handle classifies err, bumps the (category, error type) occurrence counter,
// logs the failure at a category-derived severity, and returns a structured
// AgentError enriched with the supplied context plus operation, error_type,
// and error_count keys.
//
// When err already carries an AgentError its category is preserved rather
// than re-derived, and the result is a rewrap with enriched context.
func (h *Handler) Handle(err error, extraContext map[string]any, operation string) *AgentError {
	category := Classify(err)
	if agentErr, ok := AsAgentError(err); ok {
		category = agentErr.Category
	}

	errorType := fmt.Sprintf("%T", err)
	errorType = strings.TrimPrefix(errorType, "*")

	errorKey := string(category) + "_" + errorType

	h.mu.Lock()
	h.errorCounts[errorKey]++
	count := h.errorCounts[errorKey]
	h.mu.Unlock()

	mergedContext := make(map[string]any, len(extraContext)+3)
	for k, v := range extraContext {
		mergedContext[k] = v
	}
	mergedContext["operation"] = operation
	mergedContext["error_type"] = errorType
	mergedContext["error_count"] = count

	var handled *AgentError
	if agentErr, ok := AsAgentError(err); ok {
		handled = agentErr.WithContext(mergedContext)
	} else {
		handled = New(err.Error(), category,
			WithContext(mergedContext),
			WithCause(err),
		)
	}

	h.logger.LogAttrs(context.Background(), logLevel(category),
		fmt.Sprintf("%s failed: %s error", operation, category),
		slog.String("trace_id", handled.TraceID),
		slog.String("message", handled.Message),
		slog.Any("error_details", handled.ToDict()),
	)

	return handled
}

// Stats is a snapshot of the handler's error counters.
type Stats struct {
	TotalErrors     int            `json:"total_errors"`
	ErrorBreakdown  map[string]int `json:"error_breakdown"`
	MostCommon      string         `json:"most_common,omitempty"`
	MostCommonCount int            `json:"most_common_count,omitempty"`
}

// Stats returns the total number of handled errors, the per-key breakdown,
// and the single most frequent (category, type) key.
func (h *Handler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := Stats{ErrorBreakdown: make(map[string]int, len(h.errorCounts))}
	for key, count := range h.errorCounts {
		stats.ErrorBreakdown[key] = count
		stats.TotalErrors += count
		if count > stats.MostCommonCount {
			stats.MostCommon = key
			stats.MostCommonCount = count
		}
	}

	return stats
}
