package provider

import (
	"context"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
)

// ChatTurn is one message forwarded to a chat-completion provider
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatProvider produces a single assistant reply for a sequence of turns
type ChatProvider interface {
	Complete(ctx context.Context, turns []ChatTurn) (string, error)
}

// ImageProvider produces one image URL per call; batch requests issue
// multiple concurrent calls at the service layer
type ImageProvider interface {
	Generate(ctx context.Context, prompt string, resolution domain.ImageResolution) (string, error)
}

// VideoProvider produces a video URL for a prompt
type VideoProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Remote task statuses reported by asynchronous providers. Anything
// else counts as still in progress.
const (
	TaskStatusComposed = "composed"
	TaskStatusFailed   = "failed"
)

// TaskState is one snapshot of a remote composition task
type TaskState struct {
	Status    string
	ResultURL string
}

// MusicProvider submits a composition job and reports its progress.
// Compose returns an opaque task handle; the result arrives only
// through later TaskState calls.
type MusicProvider interface {
	Compose(ctx context.Context, prompt string) (string, error)
	TaskState(ctx context.Context, taskID string) (TaskState, error)
}
