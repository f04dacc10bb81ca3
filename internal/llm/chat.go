package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatClient implements Client against an OpenAI-compatible
// /chat/completions endpoint (DeepSeek by default).
type ChatClient struct {
	config     *Config
	httpClient *http.Client
}

var _ Client = (*ChatClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewChatClient builds a client from configuration.
func NewChatClient(config *Config) (*ChatClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ChatClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Complete posts a system+user conversation and returns the first choice.
func (c *ChatClient) Complete(ctx context.Context, req Request) (string, error) {
	model := c.config.GetModel(req.Tier)
	if model == "" {
		return "", &Error{Provider: c.config.Provider, Message: fmt.Sprintf("no model configured for tier %s", req.Tier)}
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", &Error{Provider: c.config.Provider, Message: "marshal payload", Cause: err}
	}

	url := strings.TrimRight(c.config.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Provider: c.config.Provider, Message: "new request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Provider: c.config.Provider, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &Error{
			Provider: c.config.Provider,
			Message:  fmt.Sprintf("status %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &Error{Provider: c.config.Provider, Message: "decode response", Cause: err}
	}
	if len(decoded.Choices) == 0 {
		return "", &Error{Provider: c.config.Provider, Message: "no choices in response"}
	}

	return decoded.Choices[0].Message.Content, nil
}

// GetModel returns the model name for a tier
func (c *ChatClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no resources that need release.
func (c *ChatClient) Close() error {
	return nil
}
