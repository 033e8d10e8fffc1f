package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/Dan9191/advisory-service/internal/stream"
	"github.com/sirupsen/logrus"
)

var (
	ErrRateLimited   = errors.New("chat: rate limited")
	ErrQuotaExceeded = errors.New("chat: quota exceeded")
	ErrTransport     = errors.New("chat: transport failure")
)

// UserMessage returns the text shown in place of the assistant reply
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	case errors.Is(err, ErrQuotaExceeded):
		return "The assistant is temporarily unavailable. Please contact us directly."
	default:
		return "Something went wrong while contacting the assistant. Please try again."
	}
}

// Client streams completions from an OpenAI-compatible chat endpoint
type Client struct {
	url      string
	apiKey   string
	model    string
	settings *Settings
	client   *http.Client
	log      *logrus.Logger
}

// NewClient initializes a new chat completion client
func NewClient(url, apiKey, model string, settings *Settings, log *logrus.Logger) *Client {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Client{
		url:      url,
		apiKey:   apiKey,
		model:    model,
		settings: settings,
		// No overall timeout: replies stream for as long as the model writes.
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		log: log,
	}
}

type completionRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// Settings returns the prompt and action rules in use
func (c *Client) Settings() *Settings {
	return c.settings
}

// Stream sends the conversation upstream and calls onDelta for every text
// delta in arrival order. It returns the complete assistant message.
func (c *Client) Stream(ctx context.Context, history []models.ChatMessage, onDelta func(string)) (string, error) {
	messages := make([]models.ChatMessage, 0, len(history)+1)
	if c.settings.SystemPrompt != "" {
		messages = append(messages, models.ChatMessage{Role: "system", Content: c.settings.SystemPrompt})
	}
	messages = append(messages, history...)

	body, err := json.Marshal(completionRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		c.log.Warnf("Chat upstream rejected request: %v", err)
		return "", err
	}

	decoder := stream.NewDecoder()
	buf := make([]byte, 4096)
	for !decoder.Done() {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, delta := range decoder.Feed(string(buf[:n])) {
				if onDelta != nil {
					onDelta(delta)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return decoder.Message(), fmt.Errorf("%w: %v", ErrTransport, readErr)
		}
	}

	c.log.Debugf("Chat reply completed: %d bytes, done=%v", len(decoder.Message()), decoder.Done())
	return decoder.Message(), nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrTransport, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}
