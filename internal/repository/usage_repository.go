package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// UsageRepository is a per-user generation counter store
type UsageRepository interface {
	// Get returns the stored count, or 0 if no record exists yet
	Get(ctx context.Context, userID string) (int, error)

	// Increment atomically creates the record with count=1 if absent,
	// else bumps count by one. Safe under concurrent calls for the
	// same user.
	Increment(ctx context.Context, userID string) error
}

// InMemoryUsageRepository keeps counters in a mutex-guarded map
type InMemoryUsageRepository struct {
	records map[string]*domain.UsageRecord
	mutex   sync.Mutex
	log     *logger.Logger
}

// NewInMemoryUsageRepository creates a new in-memory usage repository
func NewInMemoryUsageRepository(log *logger.Logger) *InMemoryUsageRepository {
	return &InMemoryUsageRepository{
		records: make(map[string]*domain.UsageRecord),
		log:     log,
	}
}

// Get returns the stored count, or 0 when the user has no record yet
func (r *InMemoryUsageRepository) Get(ctx context.Context, userID string) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists := r.records[userID]
	if !exists {
		return 0, nil
	}

	return record.Count, nil
}

// Increment bumps the counter under the repository lock
func (r *InMemoryUsageRepository) Increment(ctx context.Context, userID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists := r.records[userID]
	if !exists {
		now := time.Now()
		r.records[userID] = &domain.UsageRecord{
			UserID:    userID,
			Count:     1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	}

	record.Count++
	record.UpdatedAt = time.Now()

	return nil
}

// PostgresUsageRepository stores counters in PostgreSQL. The increment
// happens inside a single upsert statement so concurrent requests for
// the same user never lose updates.
type PostgresUsageRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresUsageRepository creates a new PostgreSQL usage repository
func NewPostgresUsageRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresUsageRepository {
	return &PostgresUsageRepository{
		db:  db,
		log: log,
	}
}

// Get returns the stored count for the user
func (r *PostgresUsageRepository) Get(ctx context.Context, userID string) (int, error) {
	query := `SELECT count FROM usage_records WHERE user_id = $1`

	var count int
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lazy default: no record means no usage yet
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage record: %w", err)
	}

	return count, nil
}

// Increment performs an atomic upsert increment
func (r *PostgresUsageRepository) Increment(ctx context.Context, userID string) error {
	query := `
		INSERT INTO usage_records (user_id, count, created_at, updated_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET count = usage_records.count + 1, updated_at = $2
	`

	_, err := r.db.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment usage record: %w", err)
	}

	return nil
}
