package beatoven

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/provider"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

const (
	defaultBaseURL = "https://public-api.beatoven.ai"

	requestTimeout = 30 * time.Second
)

// Config holds the settings for the music-composition client
type Config struct {
	BaseURL string
	APIKey  string
}

// Client talks to a Beatoven-style asynchronous composition API:
// one call starts a task, subsequent calls poll its state.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new music-composition client
func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

type composeRequest struct {
	Prompt struct {
		Text string `json:"text"`
	} `json:"prompt"`
	Format  string `json:"format"`
	Looping bool   `json:"looping"`
}

type composeResponse struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error,omitempty"`
}

type taskResponse struct {
	Status string `json:"status"`
	Meta   struct {
		TrackURL string `json:"track_url"`
	} `json:"meta"`
}

// Compose starts a composition task and returns its handle
func (c *Client) Compose(ctx context.Context, prompt string) (string, error) {
	var request composeRequest
	request.Prompt.Text = prompt
	request.Format = "mp3"
	request.Looping = false

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal compose request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/tracks/compose", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build compose request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewProviderError("music", "unavailable", "compose request failed", 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewProviderError("music", "read_failed", "failed to read compose response", resp.StatusCode, err)
	}

	var parsed composeResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", domain.NewProviderError("music", "malformed_response",
			"failed to decode compose response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := "failed to start composition"
		if parsed.Error != "" {
			message = parsed.Error
		}
		return "", domain.NewProviderError("music", "compose_failed", message, resp.StatusCode, nil)
	}

	if parsed.TaskID == "" {
		return "", domain.NewProviderError("music", "missing_task_id",
			"compose response carried no task ID", resp.StatusCode, nil)
	}

	c.log.Infow("Composition task started", "taskID", parsed.TaskID)
	return parsed.TaskID, nil
}

// TaskState fetches the current state of a composition task
func (c *Client) TaskState(ctx context.Context, taskID string) (provider.TaskState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/tasks/"+taskID, nil)
	if err != nil {
		return provider.TaskState{}, fmt.Errorf("failed to build task request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.TaskState{}, domain.NewProviderError("music", "unavailable", "task status request failed", 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.TaskState{}, domain.NewProviderError("music", "read_failed",
			"failed to read task response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return provider.TaskState{}, domain.NewProviderError("music", "status_failed",
			fmt.Sprintf("task status returned %d", resp.StatusCode), resp.StatusCode, nil)
	}

	var parsed taskResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return provider.TaskState{}, domain.NewProviderError("music", "malformed_response",
			"failed to decode task response", resp.StatusCode, err)
	}

	return provider.TaskState{
		Status:    parsed.Status,
		ResultURL: parsed.Meta.TrackURL,
	}, nil
}
