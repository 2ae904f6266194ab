// Package parse converts LLM-supplied strings into typed Go values.
//
// Model output is not reliable JSON: tool-call arguments arrive with single
// quotes, unquoted keys, or trailing commas. ParseStringAs first tries a
// direct conversion (primitives) or strict json.Unmarshal (everything else)
// and, on failure, repairs the payload with jsonrepair before retrying.
package parse
