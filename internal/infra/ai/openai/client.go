package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
)

const maxTokens = 2048

// Client is a Completer for any OpenAI-compatible chat endpoint, including
// DashScope's compatible mode.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	model := c.Model
	if model == "" {
		model = "qwen-plus"
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("failed to create chat completion: %w", ai.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ai.NoReplyText, nil
	}
	return resp.Choices[0].Message.Content, nil
}
