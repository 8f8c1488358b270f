package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// defaultListLimit caps history listings when the caller passes no limit
const defaultListLimit = 100

// LibraryService exposes every user's generation history. All lookups are
// scoped by user; another user's artifact is indistinguishable from a
// missing one.
type LibraryService interface {
	ListThreads(ctx context.Context, userID string, kind domain.ThreadKind, limit int) ([]domain.Thread, error)
	GetThread(ctx context.Context, userID string, id uuid.UUID, kind domain.ThreadKind) (domain.Thread, error)
	DeleteThread(ctx context.Context, userID string, id uuid.UUID, kind domain.ThreadKind) error

	ListImages(ctx context.Context, userID string, limit int) ([]domain.Image, error)
	GetImage(ctx context.Context, userID string, id uuid.UUID) (domain.Image, error)
	DeleteImage(ctx context.Context, userID string, id uuid.UUID) error

	ListVideos(ctx context.Context, userID string, limit int) ([]domain.Video, error)
	GetVideo(ctx context.Context, userID string, id uuid.UUID) (domain.Video, error)
	DeleteVideo(ctx context.Context, userID string, id uuid.UUID) error

	ListTracks(ctx context.Context, userID string, limit int) ([]domain.MusicTrack, error)
	GetTrack(ctx context.Context, userID string, id uuid.UUID) (domain.MusicTrack, error)
	DeleteTrack(ctx context.Context, userID string, id uuid.UUID) error
}

type libraryService struct {
	threads repository.ThreadRepository
	media   repository.MediaRepository
	log     *logger.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(threads repository.ThreadRepository, media repository.MediaRepository, log *logger.Logger) LibraryService {
	return &libraryService{
		threads: threads,
		media:   media,
		log:     log,
	}
}

func (s *libraryService) ListThreads(ctx context.Context, userID string, kind domain.ThreadKind, limit int) ([]domain.Thread, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.threads.ListByUser(ctx, userID, kind, normalizeLimit(limit))
}

func (s *libraryService) GetThread(ctx context.Context, userID string, id uuid.UUID, kind domain.ThreadKind) (domain.Thread, error) {
	if userID == "" {
		return domain.Thread{}, domain.ErrUnauthenticated
	}
	thread, err := s.threads.GetByIDForUser(ctx, id, userID, kind)
	if err != nil {
		return domain.Thread{}, mapRepoErr(err, "thread", id)
	}
	return thread, nil
}

func (s *libraryService) DeleteThread(ctx context.Context, userID string, id uuid.UUID, kind domain.ThreadKind) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.threads.DeleteByIDForUser(ctx, id, userID, kind); err != nil {
		return mapRepoErr(err, "thread", id)
	}
	s.log.Debug("Deleted %s thread %s for user %s", kind, id, userID)
	return nil
}

func (s *libraryService) ListImages(ctx context.Context, userID string, limit int) ([]domain.Image, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.media.ListImagesByUser(ctx, userID, normalizeLimit(limit))
}

func (s *libraryService) GetImage(ctx context.Context, userID string, id uuid.UUID) (domain.Image, error) {
	if userID == "" {
		return domain.Image{}, domain.ErrUnauthenticated
	}
	image, err := s.media.GetImageByIDForUser(ctx, id, userID)
	if err != nil {
		return domain.Image{}, mapRepoErr(err, "image", id)
	}
	return image, nil
}

func (s *libraryService) DeleteImage(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.media.DeleteImageByIDForUser(ctx, id, userID); err != nil {
		return mapRepoErr(err, "image", id)
	}
	s.log.Debug("Deleted image %s for user %s", id, userID)
	return nil
}

func (s *libraryService) ListVideos(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.media.ListVideosByUser(ctx, userID, normalizeLimit(limit))
}

func (s *libraryService) GetVideo(ctx context.Context, userID string, id uuid.UUID) (domain.Video, error) {
	if userID == "" {
		return domain.Video{}, domain.ErrUnauthenticated
	}
	video, err := s.media.GetVideoByIDForUser(ctx, id, userID)
	if err != nil {
		return domain.Video{}, mapRepoErr(err, "video", id)
	}
	return video, nil
}

func (s *libraryService) DeleteVideo(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.media.DeleteVideoByIDForUser(ctx, id, userID); err != nil {
		return mapRepoErr(err, "video", id)
	}
	s.log.Debug("Deleted video %s for user %s", id, userID)
	return nil
}

func (s *libraryService) ListTracks(ctx context.Context, userID string, limit int) ([]domain.MusicTrack, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.media.ListTracksByUser(ctx, userID, normalizeLimit(limit))
}

func (s *libraryService) GetTrack(ctx context.Context, userID string, id uuid.UUID) (domain.MusicTrack, error) {
	if userID == "" {
		return domain.MusicTrack{}, domain.ErrUnauthenticated
	}
	track, err := s.media.GetTrackByIDForUser(ctx, id, userID)
	if err != nil {
		return domain.MusicTrack{}, mapRepoErr(err, "music track", id)
	}
	return track, nil
}

func (s *libraryService) DeleteTrack(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.media.DeleteTrackByIDForUser(ctx, id, userID); err != nil {
		return mapRepoErr(err, "music track", id)
	}
	s.log.Debug("Deleted music track %s for user %s", id, userID)
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}

func mapRepoErr(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return err
}
