package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxResponseBodySize caps how much of a provider response is read into
// memory (16 MiB).
const maxResponseBodySize = 16 << 20

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes
// the response into OutputStruct.
//
// Error handling strategy:
//   - context errors (timeout, cancellation) propagate immediately
//   - non-2xx statuses return an error that includes the status code and a
//     body preview, so the caller's error classifier can see the code
//   - body close errors are logged, never override the primary error
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any) (*OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	responseBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status %d: %s", res.StatusCode, TruncateString(string(responseBody), 200))
	}

	var output OutputStruct
	if err := json.Unmarshal(responseBody, &output); err != nil {
		return nil, fmt.Errorf("error decoding response: %w (body: %s)", err, TruncateString(string(responseBody), 200))
	}

	return &output, nil
}
