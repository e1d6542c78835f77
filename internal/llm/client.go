package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultEndpoint is the Groq OpenAI-compatible chat completions API.
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"

	requestTimeout = 60 * time.Second
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage counts the completion tokens consumed by API calls. It is returned
// from every call and summed by the caller; there is no process-wide counter.
type Usage struct {
	CompletionTokens int
}

// Add folds another call's usage into the accumulator.
func (u *Usage) Add(other Usage) {
	u.CompletionTokens += other.CompletionTokens
}

// Client calls the Groq chat completions API.
type Client struct {
	// Endpoint can be pointed at a test server.
	Endpoint string

	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient creates a client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		Endpoint:    DefaultEndpoint,
		apiKey:      apiKey,
		model:       model,
		temperature: 0.1,
		maxTokens:   500,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	N           int       `json:"n"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the model reply
// together with the tokens that call consumed.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, Usage, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		N:           1,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to read completion response: %w", err)
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", Usage{}, fmt.Errorf("invalid completion response (status %d): %w", resp.StatusCode, err)
	}

	usage := Usage{CompletionTokens: decoded.Usage.CompletionTokens}

	if decoded.Error != nil {
		return "", usage, fmt.Errorf("completion API error (status %d): %s", resp.StatusCode, decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", usage, fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		return "", usage, fmt.Errorf("completion response contains no choices")
	}

	return decoded.Choices[0].Message.Content, usage, nil
}
