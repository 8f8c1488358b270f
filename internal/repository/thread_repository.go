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

// ThreadRepository stores conversation and code-generation threads.
// Every read and delete is scoped by user; a thread belonging to a
// different user behaves exactly like a missing one.
type ThreadRepository interface {
	// AppendTurns appends turns to a thread. A nil threadID creates the
	// thread, deriving its title from the first user turn; otherwise the
	// thread must already exist for this user.
	AppendTurns(ctx context.Context, userID string, kind domain.ThreadKind, threadID *uuid.UUID, turns []domain.Message) (domain.Thread, error)

	// ListByUser returns the user's threads of one kind, most recently
	// updated first, including their turns
	ListByUser(ctx context.Context, userID string, kind domain.ThreadKind, limit int) ([]domain.Thread, error)

	// GetByIDForUser returns one thread with its turns
	GetByIDForUser(ctx context.Context, id uuid.UUID, userID string, kind domain.ThreadKind) (domain.Thread, error)

	// DeleteByIDForUser deletes one thread and its turns
	DeleteByIDForUser(ctx context.Context, id uuid.UUID, userID string, kind domain.ThreadKind) error
}

// InMemoryThreadRepository keeps threads in memory
type InMemoryThreadRepository struct {
	threads map[uuid.UUID]*domain.Thread
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryThreadRepository creates a new in-memory thread repository
func NewInMemoryThreadRepository(log *logger.Logger) *InMemoryThreadRepository {
	return &InMemoryThreadRepository{
		threads: make(map[uuid.UUID]*domain.Thread),
		log:     log,
	}
}

// AppendTurns appends turns, creating the thread when threadID is nil
func (r *InMemoryThreadRepository) AppendTurns(ctx context.Context, userID string, kind domain.ThreadKind, threadID *uuid.UUID, turns []domain.Message) (domain.Thread, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()

	var thread *domain.Thread
	if threadID == nil {
		title := "New thread..."
		if first, ok := domain.FirstUserMessage(turns); ok {
			title = domain.DeriveThreadTitle(first.Content)
		}
		thread = &domain.Thread{
			ID:        uuid.New(),
			UserID:    userID,
			Kind:      kind,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.threads[thread.ID] = thread
	} else {
		existing, exists := r.threads[*threadID]
		if !exists || existing.UserID != userID || existing.Kind != kind {
			return domain.Thread{}, ErrNotFound
		}
		thread = existing
	}

	for _, turn := range turns {
		turn.ID = uuid.New()
		turn.ThreadID = thread.ID
		turn.Position = len(thread.Messages)
		turn.CreatedAt = now
		thread.Messages = append(thread.Messages, turn)
	}
	thread.UpdatedAt = now

	return cloneThread(thread), nil
}

// ListByUser returns the user's threads, most recently updated first
func (r *InMemoryThreadRepository) ListByUser(ctx context.Context, userID string, kind domain.ThreadKind, limit int) ([]domain.Thread, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var threads []domain.Thread
	for _, thread := range r.threads {
		if thread.UserID == userID && thread.Kind == kind {
			threads = append(threads, cloneThread(thread))
		}
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})

	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}

	return threads, nil
}

// GetByIDForUser returns one thread with its turns
func (r *InMemoryThreadRepository) GetByIDForUser(ctx context.Context, id uuid.UUID, userID string, kind domain.ThreadKind) (domain.Thread, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	thread, exists := r.threads[id]
	if !exists || thread.UserID != userID || thread.Kind != kind {
		return domain.Thread{}, ErrNotFound
	}

	return cloneThread(thread), nil
}

// DeleteByIDForUser deletes one thread and its turns
func (r *InMemoryThreadRepository) DeleteByIDForUser(ctx context.Context, id uuid.UUID, userID string, kind domain.ThreadKind) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	thread, exists := r.threads[id]
	if !exists || thread.UserID != userID || thread.Kind != kind {
		return ErrNotFound
	}

	delete(r.threads, id)

	return nil
}

func cloneThread(t *domain.Thread) domain.Thread {
	clone := *t
	clone.Messages = append([]domain.Message(nil), t.Messages...)
	return clone
}

// PostgresThreadRepository stores threads in PostgreSQL
type PostgresThreadRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresThreadRepository creates a new PostgreSQL thread repository
func NewPostgresThreadRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresThreadRepository {
	return &PostgresThreadRepository{
		db:  db,
		log: log,
	}
}

// AppendTurns appends turns inside a transaction, creating the thread
// when threadID is nil
func (r *PostgresThreadRepository) AppendTurns(ctx context.Context, userID string, kind domain.ThreadKind, threadID *uuid.UUID, turns []domain.Message) (domain.Thread, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	var thread domain.Thread

	if threadID == nil {
		title := "New thread..."
		if first, ok := domain.FirstUserMessage(turns); ok {
			title = domain.DeriveThreadTitle(first.Content)
		}

		query := `
			INSERT INTO threads (id, user_id, kind, title, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING id, user_id, kind, title, created_at, updated_at
		`
		err = tx.QueryRow(ctx, query, uuid.New(), userID, kind, title, now).Scan(
			&thread.ID, &thread.UserID, &thread.Kind, &thread.Title,
			&thread.CreatedAt, &thread.UpdatedAt,
		)
		if err != nil {
			return domain.Thread{}, fmt.Errorf("failed to create thread: %w", err)
		}
	} else {
		query := `
			UPDATE threads SET updated_at = $1
			WHERE id = $2 AND user_id = $3 AND kind = $4
			RETURNING id, user_id, kind, title, created_at, updated_at
		`
		err = tx.QueryRow(ctx, query, now, *threadID, userID, kind).Scan(
			&thread.ID, &thread.UserID, &thread.Kind, &thread.Title,
			&thread.CreatedAt, &thread.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Thread{}, ErrNotFound
			}
			return domain.Thread{}, fmt.Errorf("failed to touch thread: %w", err)
		}
	}

	// Both turns of an exchange share one timestamp, so each gets an
	// explicit position to keep replay order stable.
	var nextPosition int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM thread_messages WHERE thread_id = $1`,
		thread.ID,
	).Scan(&nextPosition)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to determine next message position: %w", err)
	}

	insertTurn := `
		INSERT INTO thread_messages (id, thread_id, role, position, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, turn := range turns {
		turn.ID = uuid.New()
		turn.ThreadID = thread.ID
		turn.Position = nextPosition
		turn.CreatedAt = now
		nextPosition++
		if _, err := tx.Exec(ctx, insertTurn, turn.ID, turn.ThreadID, turn.Role, turn.Position, turn.Content, turn.CreatedAt); err != nil {
			return domain.Thread{}, fmt.Errorf("failed to insert thread message: %w", err)
		}
		thread.Messages = append(thread.Messages, turn)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Thread{}, fmt.Errorf("failed to commit thread transaction: %w", err)
	}

	return thread, nil
}

// ListByUser returns the user's threads, most recently updated first
func (r *PostgresThreadRepository) ListByUser(ctx context.Context, userID string, kind domain.ThreadKind, limit int) ([]domain.Thread, error) {
	query := `
		SELECT id, user_id, kind, title, created_at, updated_at
		FROM threads
		WHERE user_id = $1 AND kind = $2
		ORDER BY updated_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, userID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var thread domain.Thread
		if err := rows.Scan(&thread.ID, &thread.UserID, &thread.Kind, &thread.Title, &thread.CreatedAt, &thread.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", err)
	}

	for i := range threads {
		messages, err := r.loadMessages(ctx, threads[i].ID)
		if err != nil {
			return nil, err
		}
		threads[i].Messages = messages
	}

	return threads, nil
}

// GetByIDForUser returns one thread with its turns
func (r *PostgresThreadRepository) GetByIDForUser(ctx context.Context, id uuid.UUID, userID string, kind domain.ThreadKind) (domain.Thread, error) {
	query := `
		SELECT id, user_id, kind, title, created_at, updated_at
		FROM threads
		WHERE id = $1 AND user_id = $2 AND kind = $3
	`

	var thread domain.Thread
	err := r.db.QueryRow(ctx, query, id, userID, kind).Scan(
		&thread.ID, &thread.UserID, &thread.Kind, &thread.Title,
		&thread.CreatedAt, &thread.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Thread{}, ErrNotFound
		}
		return domain.Thread{}, fmt.Errorf("failed to get thread: %w", err)
	}

	thread.Messages, err = r.loadMessages(ctx, thread.ID)
	if err != nil {
		return domain.Thread{}, err
	}

	return thread, nil
}

// DeleteByIDForUser deletes one thread; messages go with it via cascade
func (r *PostgresThreadRepository) DeleteByIDForUser(ctx context.Context, id uuid.UUID, userID string, kind domain.ThreadKind) error {
	query := `DELETE FROM threads WHERE id = $1 AND user_id = $2 AND kind = $3`

	result, err := r.db.Exec(ctx, query, id, userID, kind)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresThreadRepository) loadMessages(ctx context.Context, threadID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, thread_id, role, position, content, created_at
		FROM thread_messages
		WHERE thread_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Query(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Position, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating thread messages: %w", err)
	}

	return messages, nil
}
