// Package utils holds small internal helpers shared across the module:
// string truncation for log output and a JSON POST helper for provider
// implementations.
package utils
