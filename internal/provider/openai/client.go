package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/provider"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

const (
	defaultBaseURL = "https://models.github.ai/inference"
	defaultModel   = "openai/gpt-4.1-mini"

	requestTimeout = 60 * time.Second
)

// Config holds the settings for the chat-completion client
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client calls an OpenAI-compatible chat-completions endpoint
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new chat-completion client
func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []provider.ChatTurn `json:"messages"`
	Temperature float64             `json:"temperature"`
	TopP        float64             `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the turns to the provider and returns the assistant
// reply. Transient failures (5xx, 429, transport errors) retry with
// exponential backoff; other client errors fail immediately.
func (c *Client) Complete(ctx context.Context, turns []provider.ChatTurn) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    turns,
		Temperature: 1.0,
		TopP:        1.0,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	var reply string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Warnw("Chat completion request failed, will retry", "error", err)
			return err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			c.log.Warnw("Chat provider returned retryable status", "status", resp.StatusCode)
			return fmt.Errorf("chat provider returned status %d", resp.StatusCode)
		}

		var parsed chatResponse
		if err := json.Unmarshal(payload, &parsed); err != nil {
			return backoff.Permanent(domain.NewProviderError("chat", "malformed_response",
				"failed to decode chat completion response", resp.StatusCode, err))
		}

		if resp.StatusCode != http.StatusOK {
			message := "chat completion failed"
			if parsed.Error != nil {
				message = parsed.Error.Message
			}
			return backoff.Permanent(domain.NewProviderError("chat", "request_failed", message, resp.StatusCode, nil))
		}

		if len(parsed.Choices) == 0 {
			return backoff.Permanent(domain.NewProviderError("chat", "empty_response",
				"chat completion returned no choices", resp.StatusCode, nil))
		}

		reply = parsed.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = 1 * time.Minute

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		if _, ok := err.(*domain.ProviderError); ok {
			return "", err
		}
		return "", domain.NewProviderError("chat", "unavailable", "chat completion failed after retries", 0, err)
	}

	return reply, nil
}
