package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/kafka/producer"
	"github.com/SufyanAli-7/Genix-AI/internal/metrics"
	"github.com/SufyanAli-7/Genix-AI/internal/provider"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// codeSystemPrompt steers the chat model toward answering with code
// when the request came in through the code tool.
const codeSystemPrompt = "You are a code generator. You must answer only in markdown code snippets. Use code comments for explanations."

// GenerationService runs the generation tools end to end: entitlement
// check, provider call, artifact persistence and usage metering. Usage
// is recorded once per job regardless of how many provider calls the
// job fans out into.
type GenerationService interface {
	Conversation(ctx context.Context, userID string, threadID *uuid.UUID, prompt string) (domain.Thread, error)
	Code(ctx context.Context, userID string, threadID *uuid.UUID, prompt string) (domain.Thread, error)
	Image(ctx context.Context, userID, prompt string, amount int, resolution domain.ImageResolution) ([]domain.Image, error)
	Music(ctx context.Context, userID, prompt string) (domain.MusicTrack, error)
	Video(ctx context.Context, userID, prompt string) (domain.Video, error)
}

type generationService struct {
	entitlements EntitlementService
	threads      repository.ThreadRepository
	media        repository.MediaRepository
	chat         provider.ChatProvider
	images       provider.ImageProvider
	videos       provider.VideoProvider
	music        provider.MusicProvider
	poller       *provider.Poller
	events       producer.EventProducer
	metrics      metrics.GenerationMetrics
	log          *logger.Logger
}

// GenerationDeps bundles the dependencies of the generation service
type GenerationDeps struct {
	Entitlements EntitlementService
	Threads      repository.ThreadRepository
	Media        repository.MediaRepository
	Chat         provider.ChatProvider
	Images       provider.ImageProvider
	Videos       provider.VideoProvider
	Music        provider.MusicProvider
	Poller       *provider.Poller
	Events       producer.EventProducer
	Metrics      metrics.GenerationMetrics
	Log          *logger.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(deps GenerationDeps) GenerationService {
	if deps.Events == nil {
		deps.Events = producer.NopEventProducer{}
	}
	return &generationService{
		entitlements: deps.Entitlements,
		threads:      deps.Threads,
		media:        deps.Media,
		chat:         deps.Chat,
		images:       deps.Images,
		videos:       deps.Videos,
		music:        deps.Music,
		poller:       deps.Poller,
		events:       deps.Events,
		metrics:      deps.Metrics,
		log:          deps.Log,
	}
}

func (s *generationService) Conversation(ctx context.Context, userID string, threadID *uuid.UUID, prompt string) (domain.Thread, error) {
	return s.chatTool(ctx, userID, threadID, prompt, domain.ThreadKindConversation, domain.ToolConversation, nil)
}

func (s *generationService) Code(ctx context.Context, userID string, threadID *uuid.UUID, prompt string) (domain.Thread, error) {
	system := []provider.ChatTurn{{Role: string(domain.MessageRoleSystem), Content: codeSystemPrompt}}
	return s.chatTool(ctx, userID, threadID, prompt, domain.ThreadKindCode, domain.ToolCode, system)
}

// chatTool is the shared conversation/code pipeline. When threadID is
// set, the thread's prior turns are replayed to the provider so the
// model sees the full dialog.
func (s *generationService) chatTool(ctx context.Context, userID string, threadID *uuid.UUID, prompt string, kind domain.ThreadKind, tool domain.Tool, system []provider.ChatTurn) (domain.Thread, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.Thread{}, fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}

	if err := s.checkEntitlement(ctx, userID, tool); err != nil {
		return domain.Thread{}, err
	}

	turns := append([]provider.ChatTurn{}, system...)
	if threadID != nil {
		existing, err := s.threads.GetByIDForUser(ctx, *threadID, userID, kind)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Thread{}, fmt.Errorf("thread %s: %w", threadID, domain.ErrNotFound)
			}
			return domain.Thread{}, err
		}
		for _, msg := range existing.Messages {
			turns = append(turns, provider.ChatTurn{Role: string(msg.Role), Content: msg.Content})
		}
	}
	turns = append(turns, provider.ChatTurn{Role: string(domain.MessageRoleUser), Content: prompt})

	started := time.Now()
	reply, err := s.chat.Complete(ctx, turns)
	if err != nil {
		s.finishFailed(ctx, userID, tool, err)
		return domain.Thread{}, err
	}

	now := time.Now()
	thread, err := s.threads.AppendTurns(ctx, userID, kind, threadID, []domain.Message{
		{ID: uuid.New(), Role: domain.MessageRoleUser, Content: prompt, CreatedAt: now},
		{ID: uuid.New(), Role: domain.MessageRoleAssistant, Content: reply, CreatedAt: now},
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Thread{}, fmt.Errorf("thread %s: %w", threadID, domain.ErrNotFound)
		}
		// The reply was produced; losing the history copy must not lose
		// the response. Hand back an unsaved thread instead.
		s.log.Error("Failed to persist %s thread for user %s: %v", kind, userID, err)
		thread = domain.Thread{
			UserID: userID,
			Kind:   kind,
			Title:  domain.DeriveThreadTitle(prompt),
			Messages: []domain.Message{
				{ID: uuid.New(), Role: domain.MessageRoleUser, Position: 0, Content: prompt, CreatedAt: now},
				{ID: uuid.New(), Role: domain.MessageRoleAssistant, Position: 1, Content: reply, CreatedAt: now},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	s.finishCompleted(ctx, userID, tool, thread.ID.String(), time.Since(started))
	return thread, nil
}

func (s *generationService) Image(ctx context.Context, userID, prompt string, amount int, resolution domain.ImageResolution) ([]domain.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}
	if amount < 1 || amount > domain.MaxImageBatch {
		return nil, fmt.Errorf("amount must be between 1 and %d: %w", domain.MaxImageBatch, domain.ErrInvalidInput)
	}
	if resolution == "" {
		resolution = domain.ImageResolutionAuto
	}
	if !domain.ValidImageResolution(resolution) {
		return nil, fmt.Errorf("unsupported resolution %q: %w", resolution, domain.ErrInvalidInput)
	}

	if err := s.checkEntitlement(ctx, userID, domain.ToolImage); err != nil {
		return nil, err
	}

	started := time.Now()

	// The provider returns one image per call, so a batch is a fan-out
	// of independent calls. Failed calls drop out of the batch; the job
	// fails only when every call failed.
	urls := make([]string, amount)
	errs := make([]error, amount)
	var wg sync.WaitGroup
	for i := 0; i < amount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			urls[i], errs[i] = s.images.Generate(ctx, prompt, resolution)
		}(i)
	}
	wg.Wait()

	var firstErr error
	images := make([]domain.Image, 0, amount)
	for i := 0; i < amount; i++ {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			s.log.Warn("Image call %d/%d failed for user %s: %v", i+1, amount, userID, errs[i])
			continue
		}
		images = append(images, domain.Image{
			ID:         uuid.New(),
			UserID:     userID,
			Prompt:     prompt,
			URL:        urls[i],
			Resolution: resolution,
			CreatedAt:  time.Now(),
		})
	}

	if len(images) == 0 {
		err := firstErr
		if err == nil {
			err = domain.NewProviderError("image", "empty_batch", "no images were produced", 0, nil)
		}
		s.finishFailed(ctx, userID, domain.ToolImage, err)
		return nil, err
	}

	for i := range images {
		saved, err := s.media.CreateImage(ctx, images[i])
		if err != nil {
			s.log.Error("Failed to persist image for user %s: %v", userID, err)
			continue
		}
		images[i] = saved
	}

	s.finishCompleted(ctx, userID, domain.ToolImage, images[0].ID.String(), time.Since(started))
	return images, nil
}

func (s *generationService) Music(ctx context.Context, userID, prompt string) (domain.MusicTrack, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.MusicTrack{}, fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}

	if err := s.checkEntitlement(ctx, userID, domain.ToolMusic); err != nil {
		return domain.MusicTrack{}, err
	}

	started := time.Now()

	taskID, err := s.music.Compose(ctx, prompt)
	if err != nil {
		s.finishFailed(ctx, userID, domain.ToolMusic, err)
		return domain.MusicTrack{}, err
	}

	audioURL, err := s.poller.Await(ctx, s.music, taskID)
	if err != nil {
		s.finishFailed(ctx, userID, domain.ToolMusic, err)
		return domain.MusicTrack{}, err
	}

	track := domain.MusicTrack{
		ID:        uuid.New(),
		UserID:    userID,
		Prompt:    prompt,
		AudioURL:  audioURL,
		CreatedAt: time.Now(),
	}
	if saved, err := s.media.CreateTrack(ctx, track); err != nil {
		s.log.Error("Failed to persist music track for user %s: %v", userID, err)
	} else {
		track = saved
	}

	s.finishCompleted(ctx, userID, domain.ToolMusic, track.ID.String(), time.Since(started))
	return track, nil
}

func (s *generationService) Video(ctx context.Context, userID, prompt string) (domain.Video, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.Video{}, fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}

	if err := s.checkEntitlement(ctx, userID, domain.ToolVideo); err != nil {
		return domain.Video{}, err
	}

	started := time.Now()

	url, err := s.videos.Generate(ctx, prompt)
	if err != nil {
		s.finishFailed(ctx, userID, domain.ToolVideo, err)
		return domain.Video{}, err
	}

	video := domain.Video{
		ID:        uuid.New(),
		UserID:    userID,
		Prompt:    prompt,
		URL:       url,
		CreatedAt: time.Now(),
	}
	if saved, err := s.media.CreateVideo(ctx, video); err != nil {
		s.log.Error("Failed to persist video for user %s: %v", userID, err)
	} else {
		video = saved
	}

	s.finishCompleted(ctx, userID, domain.ToolVideo, video.ID.String(), time.Since(started))
	return video, nil
}

// checkEntitlement rejects the job before any provider call happens
func (s *generationService) checkEntitlement(ctx context.Context, userID string, tool domain.Tool) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}

	allowed, err := s.entitlements.IsAllowed(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed {
		s.metrics.IncQuotaDenied(string(tool))
		s.log.Info("Free tier exhausted for user %s on tool %s", userID, tool)
		return fmt.Errorf("free generation limit reached: %w", domain.ErrQuotaExceeded)
	}
	return nil
}

// finishCompleted runs the post-success bookkeeping: usage metering,
// metrics and the completion event. None of it can fail the job.
func (s *generationService) finishCompleted(ctx context.Context, userID string, tool domain.Tool, artifactID string, elapsed time.Duration) {
	if err := s.entitlements.RecordUsage(ctx, userID); err != nil {
		s.log.Error("Failed to record usage for user %s: %v", userID, err)
	} else {
		s.metrics.IncUsageRecorded()
	}

	s.metrics.IncGenerationCompleted(string(tool))
	s.metrics.ObserveGenerationDuration(string(tool), elapsed.Seconds())

	event := producer.GenerationEvent{
		UserID:     userID,
		Tool:       tool,
		ArtifactID: artifactID,
		Timestamp:  time.Now(),
	}
	if err := s.events.PublishGenerationCompleted(ctx, event); err != nil {
		s.log.Warn("Failed to publish completion event for user %s: %v", userID, err)
	}
}

// finishFailed records a failed job without touching the usage counter
func (s *generationService) finishFailed(ctx context.Context, userID string, tool domain.Tool, cause error) {
	s.metrics.IncGenerationFailed(string(tool), failureReason(cause))

	event := producer.GenerationEvent{
		UserID:    userID,
		Tool:      tool,
		Reason:    failureReason(cause),
		Timestamp: time.Now(),
	}
	if err := s.events.PublishGenerationFailed(ctx, event); err != nil {
		s.log.Warn("Failed to publish failure event for user %s: %v", userID, err)
	}
}

// failureReason buckets an error into a low-cardinality metric label
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTimeoutExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrExternalServiceUnavailable):
		return "provider"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
