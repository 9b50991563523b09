// ABOUTME: Messages API client that talks to the relay endpoint
// ABOUTME: Sends system prompt plus history, returns the first text block of the reply
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/salesflow/models"
)

const (
	DefaultRelayURL   = "http://localhost:8080/api/messages"
	DefaultModel      = "claude-3-5-sonnet-20240620"
	DefaultMaxTokens  = 2048
	DefaultTimeout    = 2 * time.Minute
	AnthropicVersion  = "2023-06-01"
	maxResponseLength = 4 << 20
)

// Config configures a Client. APIKey is only needed when RelayURL points
// straight at the upstream API instead of the relay.
type Config struct {
	RelayURL  string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	APIKey    string
}

// Client performs one model call per Complete. It never retries.
type Client struct {
	relayURL   string
	model      string
	maxTokens  int
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type request struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	System    string           `json:"system,omitempty"`
	Messages  []models.Message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type response struct {
	Content []contentBlock `json:"content"`
	Error   *errorBody     `json:"error,omitempty"`
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.RelayURL == "" {
		cfg.RelayURL = DefaultRelayURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		relayURL:   cfg.RelayURL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("gateway"),
	}
}

func (c *Client) Model() string { return c.model }

// Complete sends system, the retained history and the new user message. On
// success the exchange is appended to history (when non-nil) and the reply
// text is returned. On failure history is left untouched.
func (c *Client) Complete(ctx context.Context, system, user string, history *History) (string, error) {
	var messages []models.Message
	if history != nil {
		messages = history.Messages()
	}
	messages = append(messages, models.Message{Role: models.RoleUser, Content: user})

	reply, err := c.send(ctx, request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return "", err
	}

	if history != nil {
		history.Append(
			models.Message{Role: models.RoleUser, Content: user},
			models.Message{Role: models.RoleAssistant, Content: reply},
		)
	}
	return reply, nil
}

func (c *Client) send(ctx context.Context, body request) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", AnthropicVersion)
	}

	start := time.Now()
	c.logger.Debug("sending model request",
		zap.String("model", c.model),
		zap.Int("messages", len(body.Messages)),
		zap.Int("system_len", len(body.System)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Warn("model request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrMalformedResponse, err)
	}

	var parsed response
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && parsed.Error != nil {
			apiErr.Type = parsed.Error.Type
			apiErr.Message = parsed.Error.Message
		}
		c.logger.Warn("model request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return "", apiErr
	}

	if decodeErr != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}

	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			c.logger.Debug("model request completed",
				zap.Duration("latency", time.Since(start)),
				zap.Int("reply_len", len(block.Text)))
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: no text content", ErrMalformedResponse)
}

// IsGatewayError reports whether err came out of Complete's error tiers
// rather than from cancellation.
func IsGatewayError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) || errors.Is(err, ErrUnreachable) || errors.Is(err, ErrMalformedResponse)
}
