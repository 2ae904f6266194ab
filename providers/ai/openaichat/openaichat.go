// Package openaichat implements ai.Provider against the OpenAI-compatible
// chat-completions wire format. Ollama, OpenAI, and LiteLLM all expose this
// endpoint, so one compact client covers every provider the configuration
// layer accepts.
package openaichat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/agentics/internal/utils"
	"github.com/leofalp/agentics/providers/ai"
)

const completionsPath = "/v1/chat/completions"

// Client talks to a single chat-completions endpoint with a fixed model
// and temperature.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New returns a Client for the endpoint rooted at baseURL, e.g.
// "http://127.0.0.1:11434" for a local ollama server.
func New(baseURL, model string, options ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

var _ ai.Provider = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Invoke sends prompt as a single user message and returns the first
// choice's content.
func (c *Client) Invoke(ctx context.Context, prompt string) (*ai.Response, error) {
	request := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}

	response, err := utils.DoPostSync[chatResponse](ctx, c.httpClient, c.baseURL+completionsPath, c.apiKey, request)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices for model %s", c.model)
	}

	return &ai.Response{Content: response.Choices[0].Message.Content}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}
