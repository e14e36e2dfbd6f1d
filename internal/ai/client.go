// Package ai talks to the language-model collaborator (a local Ollama
// instance) and recognizes structured operation payloads in its replies.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"financegpt/internal/logger"
)

const defaultBaseURL = "http://localhost:11434"

// Client is a minimal Ollama /api/generate client.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// Option configures the Client.
type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		model:       "llama3.1:8b-instruct-q4_0",
		temperature: 0.7,
		// Local models can be slow to first token.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Ask renders the assistant prompt for pc and returns the model's reply.
func (c *Client) Ask(ctx context.Context, pc PromptContext) (string, error) {
	prompt, err := renderPrompt(pc)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	logger.Debugf("ollama generate: model=%s prompt=%d bytes", c.model, len(prompt))

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}
