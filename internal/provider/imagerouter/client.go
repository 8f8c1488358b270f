package imagerouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

const (
	defaultBaseURL = "https://ir-api.myqa.cc/v1/openai/images/generations"
	defaultModel   = "black-forest-labs/FLUX-1-schnell:free"

	requestTimeout = 60 * time.Second
)

// Config holds the settings for the image-generation client
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client calls an OpenAI-images-compatible generation endpoint. Each
// call produces exactly one image; the upstream API ignores n > 1, so
// batching happens with concurrent calls at the service layer.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new image-generation client
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

type imageRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate requests a single image and returns its URL
func (c *Client) Generate(ctx context.Context, prompt string, resolution domain.ImageResolution) (string, error) {
	body, err := json.Marshal(imageRequest{
		Prompt:  prompt,
		Model:   c.model,
		Quality: string(resolution),
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build image request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewProviderError("image", "unavailable", "image generation request failed", 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewProviderError("image", "read_failed", "failed to read image response", resp.StatusCode, err)
	}

	var parsed imageResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", domain.NewProviderError("image", "malformed_response",
			"failed to decode image generation response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := "image generation failed"
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", domain.NewProviderError("image", "request_failed", message, resp.StatusCode, nil)
	}

	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", domain.NewProviderError("image", "empty_response",
			"image generation returned no image", resp.StatusCode, nil)
	}

	return parsed.Data[0].URL, nil
}
