package falai

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
	defaultBaseURL = "https://fal.run/fal-ai/ltx-video"

	// Video generation runs the full diffusion pipeline synchronously
	requestTimeout = 3 * time.Minute

	negativePrompt = "low quality, worst quality, deformed, distorted, disfigured, " +
		"motion smear, motion artifacts, fused fingers, bad anatomy, weird hand, ugly"

	numInferenceSteps = 30
	guidanceScale     = 3
)

// Config holds the settings for the video-generation client
type Config struct {
	BaseURL string
	APIKey  string
}

// Client calls a FAL-style text-to-video endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new video-generation client
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

type videoRequest struct {
	Prompt            string `json:"prompt"`
	NegativePrompt    string `json:"negative_prompt"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	GuidanceScale     int    `json:"guidance_scale"`
}

type videoResponse struct {
	Video struct {
		URL string `json:"url"`
	} `json:"video"`
	Detail string `json:"detail,omitempty"`
}

// Generate produces a video for the prompt and returns its URL
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(videoRequest{
		Prompt:            prompt,
		NegativePrompt:    negativePrompt,
		NumInferenceSteps: numInferenceSteps,
		GuidanceScale:     guidanceScale,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal video request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build video request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewProviderError("video", "unavailable", "video generation request failed", 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewProviderError("video", "read_failed", "failed to read video response", resp.StatusCode, err)
	}

	var parsed videoResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", domain.NewProviderError("video", "malformed_response",
			"failed to decode video generation response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := "video generation failed"
		if parsed.Detail != "" {
			message = parsed.Detail
		}
		return "", domain.NewProviderError("video", "request_failed", message, resp.StatusCode, nil)
	}

	if parsed.Video.URL == "" {
		return "", domain.NewProviderError("video", "empty_response",
			"video generation returned no video", resp.StatusCode, nil)
	}

	return parsed.Video.URL, nil
}
