package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
)

const (
	DefaultEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
	DefaultModel    = "qwen-plus"
)

// Client talks to the DashScope native text-generation API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

func NewClient(apiKey, model, endpoint string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{apiKey: apiKey, model: model, endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

type generationRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []ai.Message `json:"messages"`
	} `json:"input"`
	Parameters struct {
		ResultFormat string `json:"result_format"`
	} `json:"parameters"`
}

type generationResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Text string `json:"text"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// replyText prefers output.choices[0].message.content, then output.text.
func (r *generationResponse) replyText() string {
	if len(r.Output.Choices) > 0 && r.Output.Choices[0].Message.Content != "" {
		return r.Output.Choices[0].Message.Content
	}
	if r.Output.Text != "" {
		return r.Output.Text
	}
	return ai.NoReplyText
}

func (c *Client) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	var body generationRequest
	body.Model = c.model
	body.Input.Messages = messages
	body.Parameters.ResultFormat = "message"

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode generation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("dashscope request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read dashscope response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if len(detail) > 512 {
			detail = detail[:512] + "..."
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("dashscope status %d: %w", resp.StatusCode, ai.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("dashscope status %d: %s", resp.StatusCode, detail)
	}

	var out generationResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode dashscope response: %w", err)
	}
	return out.replyText(), nil
}
