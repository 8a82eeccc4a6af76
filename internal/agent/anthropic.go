package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Iron-Ham/nightfall/internal/errors"
)

const (
	// anthropicAPIURL is the Anthropic Messages API endpoint.
	anthropicAPIURL = "https://api.anthropic.com/v1/messages"

	// defaultAnthropicModel is used when no model is configured.
	defaultAnthropicModel = "claude-3-5-haiku-latest"

	// defaultMaxTokens bounds one answer; decisions are short YAML blocks.
	defaultMaxTokens = 1024
)

// Anthropic calls the Anthropic Messages API directly.
type Anthropic struct {
	apiKey     string
	model      string
	url        string
	maxTokens  int
	httpClient *http.Client
}

// AnthropicOption configures an Anthropic completer.
type AnthropicOption func(*Anthropic)

// WithAnthropicModel sets the model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(a *Anthropic) {
		if model != "" {
			a.model = model
		}
	}
}

// WithAnthropicURL overrides the endpoint, for tests and proxies.
func WithAnthropicURL(url string) AnthropicOption {
	return func(a *Anthropic) { a.url = url }
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(timeout time.Duration) AnthropicOption {
	return func(a *Anthropic) { a.httpClient.Timeout = timeout }
}

// NewAnthropic creates a completer authenticated with apiKey.
func NewAnthropic(apiKey string, opts ...AnthropicOption) (*Anthropic, error) {
	if apiKey == "" {
		return nil, errors.NewConfigError("anthropic API key not set", errors.ErrAgentUnavailable)
	}
	a := &Anthropic{
		apiKey:     apiKey,
		model:      defaultAnthropicModel,
		url:        anthropicAPIURL,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name identifies the backend in errors and logs.
func (a *Anthropic) Name() string { return "anthropic" }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends prompt as a single user message and returns the text of
// the reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	reqBytes, err := json.Marshal(messagesRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		agentErr := errors.NewAgentError(fmt.Sprintf("API error (status %d): %s", resp.StatusCode, body), nil).
			WithBackend(a.Name())
		// Client errors other than rate limiting will fail the same way again.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			agentErr.WithRetryable(false)
		}
		return "", agentErr
	}

	var respData messagesResponse
	if err := json.Unmarshal(body, &respData); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if respData.Error != nil {
		return "", fmt.Errorf("API error: %s", respData.Error.Message)
	}

	var out bytes.Buffer
	for _, block := range respData.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return out.String(), nil
}
