package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// MediaRepository stores generated images, videos and music tracks.
// All reads and deletes are scoped by user; asking for another user's
// artifact behaves exactly like asking for a missing one.
type MediaRepository interface {
	CreateImage(ctx context.Context, image domain.Image) (domain.Image, error)
	ListImagesByUser(ctx context.Context, userID string, limit int) ([]domain.Image, error)
	GetImageByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.Image, error)
	DeleteImageByIDForUser(ctx context.Context, id uuid.UUID, userID string) error

	CreateVideo(ctx context.Context, video domain.Video) (domain.Video, error)
	ListVideosByUser(ctx context.Context, userID string, limit int) ([]domain.Video, error)
	GetVideoByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.Video, error)
	DeleteVideoByIDForUser(ctx context.Context, id uuid.UUID, userID string) error

	CreateTrack(ctx context.Context, track domain.MusicTrack) (domain.MusicTrack, error)
	ListTracksByUser(ctx context.Context, userID string, limit int) ([]domain.MusicTrack, error)
	GetTrackByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.MusicTrack, error)
	DeleteTrackByIDForUser(ctx context.Context, id uuid.UUID, userID string) error
}

// InMemoryMediaRepository keeps media artifacts in memory
type InMemoryMediaRepository struct {
	images map[uuid.UUID]domain.Image
	videos map[uuid.UUID]domain.Video
	tracks map[uuid.UUID]domain.MusicTrack
	mutex  sync.RWMutex
	log    *logger.Logger
}

// NewInMemoryMediaRepository creates a new in-memory media repository
func NewInMemoryMediaRepository(log *logger.Logger) *InMemoryMediaRepository {
	return &InMemoryMediaRepository{
		images: make(map[uuid.UUID]domain.Image),
		videos: make(map[uuid.UUID]domain.Video),
		tracks: make(map[uuid.UUID]domain.MusicTrack),
		log:    log,
	}
}

// CreateImage stores an image record
func (r *InMemoryMediaRepository) CreateImage(ctx context.Context, image domain.Image) (domain.Image, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	image.CreatedAt = time.Now()
	r.images[image.ID] = image

	return image, nil
}

// ListImagesByUser returns the user's images, newest first
func (r *InMemoryMediaRepository) ListImagesByUser(ctx context.Context, userID string, limit int) ([]domain.Image, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var images []domain.Image
	for _, image := range r.images {
		if image.UserID == userID {
			images = append(images, image)
		}
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].CreatedAt.After(images[j].CreatedAt)
	})

	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}

	return images, nil
}

// GetImageByIDForUser returns one image
func (r *InMemoryMediaRepository) GetImageByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.Image, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	image, exists := r.images[id]
	if !exists || image.UserID != userID {
		return domain.Image{}, ErrNotFound
	}

	return image, nil
}

// DeleteImageByIDForUser deletes one image
func (r *InMemoryMediaRepository) DeleteImageByIDForUser(ctx context.Context, id uuid.UUID, userID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	image, exists := r.images[id]
	if !exists || image.UserID != userID {
		return ErrNotFound
	}

	delete(r.images, id)

	return nil
}

// CreateVideo stores a video record
func (r *InMemoryMediaRepository) CreateVideo(ctx context.Context, video domain.Video) (domain.Video, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	video.CreatedAt = time.Now()
	r.videos[video.ID] = video

	return video, nil
}

// ListVideosByUser returns the user's videos, newest first
func (r *InMemoryMediaRepository) ListVideosByUser(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var videos []domain.Video
	for _, video := range r.videos {
		if video.UserID == userID {
			videos = append(videos, video)
		}
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})

	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}

	return videos, nil
}

// GetVideoByIDForUser returns one video
func (r *InMemoryMediaRepository) GetVideoByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.Video, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	video, exists := r.videos[id]
	if !exists || video.UserID != userID {
		return domain.Video{}, ErrNotFound
	}

	return video, nil
}

// DeleteVideoByIDForUser deletes one video
func (r *InMemoryMediaRepository) DeleteVideoByIDForUser(ctx context.Context, id uuid.UUID, userID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	video, exists := r.videos[id]
	if !exists || video.UserID != userID {
		return ErrNotFound
	}

	delete(r.videos, id)

	return nil
}

// CreateTrack stores a music track record
func (r *InMemoryMediaRepository) CreateTrack(ctx context.Context, track domain.MusicTrack) (domain.MusicTrack, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	track.CreatedAt = time.Now()
	r.tracks[track.ID] = track

	return track, nil
}

// ListTracksByUser returns the user's tracks, newest first
func (r *InMemoryMediaRepository) ListTracksByUser(ctx context.Context, userID string, limit int) ([]domain.MusicTrack, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var tracks []domain.MusicTrack
	for _, track := range r.tracks {
		if track.UserID == userID {
			tracks = append(tracks, track)
		}
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt.After(tracks[j].CreatedAt)
	})

	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	return tracks, nil
}

// GetTrackByIDForUser returns one music track
func (r *InMemoryMediaRepository) GetTrackByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.MusicTrack, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	track, exists := r.tracks[id]
	if !exists || track.UserID != userID {
		return domain.MusicTrack{}, ErrNotFound
	}

	return track, nil
}

// DeleteTrackByIDForUser deletes one music track
func (r *InMemoryMediaRepository) DeleteTrackByIDForUser(ctx context.Context, id uuid.UUID, userID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	track, exists := r.tracks[id]
	if !exists || track.UserID != userID {
		return ErrNotFound
	}

	delete(r.tracks, id)

	return nil
}

// PostgresMediaRepository stores media artifacts in PostgreSQL
type PostgresMediaRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresMediaRepository creates a new PostgreSQL media repository
func NewPostgresMediaRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresMediaRepository {
	return &PostgresMediaRepository{
		db:  db,
		log: log,
	}
}

// CreateImage stores an image record
func (r *PostgresMediaRepository) CreateImage(ctx context.Context, image domain.Image) (domain.Image, error) {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}

	query := `
		INSERT INTO images (id, user_id, prompt, url, resolution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, image.ID, image.UserID, image.Prompt, image.URL, image.Resolution, time.Now()).
		Scan(&image.CreatedAt)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to create image: %w", err)
	}

	return image, nil
}

// ListImagesByUser returns the user's images, newest first
func (r *PostgresMediaRepository) ListImagesByUser(ctx context.Context, userID string, limit int) ([]domain.Image, error) {
	query := `
		SELECT id, user_id, prompt, url, resolution, created_at
		FROM images
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var image domain.Image
		if err := rows.Scan(&image.ID, &image.UserID, &image.Prompt, &image.URL, &image.Resolution, &image.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// GetImageByIDForUser returns one image
func (r *PostgresMediaRepository) GetImageByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.Image, error) {
	query := `
		SELECT id, user_id, prompt, url, resolution, created_at
		FROM images
		WHERE id = $1 AND user_id = $2
	`

	var image domain.Image
	err := r.db.QueryRow(ctx, query, id, userID).
		Scan(&image.ID, &image.UserID, &image.Prompt, &image.URL, &image.Resolution, &image.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Image{}, ErrNotFound
		}
		return domain.Image{}, fmt.Errorf("failed to get image: %w", err)
	}

	return image, nil
}

// DeleteImageByIDForUser deletes one image
func (r *PostgresMediaRepository) DeleteImageByIDForUser(ctx context.Context, id uuid.UUID, userID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateVideo stores a video record
func (r *PostgresMediaRepository) CreateVideo(ctx context.Context, video domain.Video) (domain.Video, error) {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}

	query := `
		INSERT INTO videos (id, user_id, prompt, url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, video.ID, video.UserID, video.Prompt, video.URL, time.Now()).
		Scan(&video.CreatedAt)
	if err != nil {
		return domain.Video{}, fmt.Errorf("failed to create video: %w", err)
	}

	return video, nil
}

// ListVideosByUser returns the user's videos, newest first
func (r *PostgresMediaRepository) ListVideosByUser(ctx context.Context, userID string, limit int) ([]domain.Video, error) {
	query := `
		SELECT id, user_id, prompt, url, created_at
		FROM videos
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var video domain.Video
		if err := rows.Scan(&video.ID, &video.UserID, &video.Prompt, &video.URL, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// GetVideoByIDForUser returns one video
func (r *PostgresMediaRepository) GetVideoByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.Video, error) {
	query := `
		SELECT id, user_id, prompt, url, created_at
		FROM videos
		WHERE id = $1 AND user_id = $2
	`

	var video domain.Video
	err := r.db.QueryRow(ctx, query, id, userID).
		Scan(&video.ID, &video.UserID, &video.Prompt, &video.URL, &video.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Video{}, ErrNotFound
		}
		return domain.Video{}, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// DeleteVideoByIDForUser deletes one video
func (r *PostgresMediaRepository) DeleteVideoByIDForUser(ctx context.Context, id uuid.UUID, userID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateTrack stores a music track record
func (r *PostgresMediaRepository) CreateTrack(ctx context.Context, track domain.MusicTrack) (domain.MusicTrack, error) {
	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}

	query := `
		INSERT INTO music_tracks (id, user_id, prompt, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, track.ID, track.UserID, track.Prompt, track.AudioURL, time.Now()).
		Scan(&track.CreatedAt)
	if err != nil {
		return domain.MusicTrack{}, fmt.Errorf("failed to create music track: %w", err)
	}

	return track, nil
}

// ListTracksByUser returns the user's tracks, newest first
func (r *PostgresMediaRepository) ListTracksByUser(ctx context.Context, userID string, limit int) ([]domain.MusicTrack, error) {
	query := `
		SELECT id, user_id, prompt, audio_url, created_at
		FROM music_tracks
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query music tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.MusicTrack
	for rows.Next() {
		var track domain.MusicTrack
		if err := rows.Scan(&track.ID, &track.UserID, &track.Prompt, &track.AudioURL, &track.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan music track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating music tracks: %w", err)
	}

	return tracks, nil
}

// GetTrackByIDForUser returns one music track
func (r *PostgresMediaRepository) GetTrackByIDForUser(ctx context.Context, id uuid.UUID, userID string) (domain.MusicTrack, error) {
	query := `
		SELECT id, user_id, prompt, audio_url, created_at
		FROM music_tracks
		WHERE id = $1 AND user_id = $2
	`

	var track domain.MusicTrack
	err := r.db.QueryRow(ctx, query, id, userID).
		Scan(&track.ID, &track.UserID, &track.Prompt, &track.AudioURL, &track.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MusicTrack{}, ErrNotFound
		}
		return domain.MusicTrack{}, fmt.Errorf("failed to get music track: %w", err)
	}

	return track, nil
}

// DeleteTrackByIDForUser deletes one music track
func (r *PostgresMediaRepository) DeleteTrackByIDForUser(ctx context.Context, id uuid.UUID, userID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM music_tracks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete music track: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
