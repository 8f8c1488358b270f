package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tool identifies one of the generation tools offered by the dashboard
type Tool string

const (
	ToolConversation Tool = "conversation"
	ToolCode         Tool = "code"
	ToolImage        Tool = "image"
	ToolMusic        Tool = "music"
	ToolVideo        Tool = "video"
)

// ImageResolution is the quality setting forwarded to the image provider
type ImageResolution string

const (
	ImageResolutionAuto   ImageResolution = "auto"
	ImageResolutionLow    ImageResolution = "low"
	ImageResolutionMedium ImageResolution = "medium"
	ImageResolutionHigh   ImageResolution = "high"
)

// MaxImageBatch is the largest image batch a single request may ask for
const MaxImageBatch = 8

// ValidImageResolution reports whether the resolution is one of the supported settings
func ValidImageResolution(r ImageResolution) bool {
	switch r {
	case ImageResolutionAuto, ImageResolutionLow, ImageResolutionMedium, ImageResolutionHigh:
		return true
	}
	return false
}

// Image is a persisted image-generation result
type Image struct {
	ID         uuid.UUID       `json:"id"`
	UserID     string          `json:"user_id"`
	Prompt     string          `json:"prompt"`
	URL        string          `json:"url"`
	Resolution ImageResolution `json:"resolution"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Video is a persisted video-generation result
type Video struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// MusicTrack is a persisted music-generation result
type MusicTrack struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}
