package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoResponse struct {
	Received map[string]any `json:"received"`
	Auth     string         `json:"auth"`
}

func TestDoPostSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		json.NewEncoder(w).Encode(echoResponse{
			Received: body,
			Auth:     r.Header.Get("Authorization"),
		})
	}))
	defer server.Close()

	got, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "secret", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, "v", got.Received["k"])
	assert.Equal(t, "Bearer secret", got.Auth)
}

func TestDoPostSyncNoAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(echoResponse{Auth: r.Header.Get("Authorization")})
	}))
	defer server.Close()

	got, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", nil)
	require.NoError(t, err)
	assert.Empty(t, got.Auth)
}

func TestDoPostSyncNon2xxIncludesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestDoPostSyncUndecodableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding response")
}

func TestDoPostSyncContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := DoPostSync[echoResponse](ctx, server.Client(), server.URL, "", nil)
	assert.Error(t, err)
}

func TestDoPostSyncNilClientFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(echoResponse{})
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), nil, server.URL, "", nil)
	assert.NoError(t, err)
}
