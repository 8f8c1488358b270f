package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// SubscriptionRepository stores the locally mirrored Stripe subscriptions
type SubscriptionRepository interface {
	// GetByUserID returns the subscription record for a user
	GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error)

	// GetByCustomerID returns the subscription record matched by Stripe customer ID
	GetByCustomerID(ctx context.Context, customerID string) (domain.UserSubscription, error)

	// Upsert creates or replaces the record keyed by Stripe customer ID
	Upsert(ctx context.Context, sub domain.UserSubscription) (domain.UserSubscription, error)
}

// InMemorySubscriptionRepository keeps subscriptions in memory
type InMemorySubscriptionRepository struct {
	byCustomer map[string]domain.UserSubscription
	mutex      sync.RWMutex
	log        *logger.Logger
}

// NewInMemorySubscriptionRepository creates a new in-memory subscription repository
func NewInMemorySubscriptionRepository(log *logger.Logger) *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{
		byCustomer: make(map[string]domain.UserSubscription),
		log:        log,
	}
}

// GetByUserID returns the subscription record for a user
func (r *InMemorySubscriptionRepository) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, sub := range r.byCustomer {
		if sub.UserID == userID {
			return sub, nil
		}
	}

	return domain.UserSubscription{}, ErrNotFound
}

// GetByCustomerID returns the subscription record for a Stripe customer
func (r *InMemorySubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (domain.UserSubscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sub, exists := r.byCustomer[customerID]
	if !exists {
		return domain.UserSubscription{}, ErrNotFound
	}

	return sub, nil
}

// Upsert creates or replaces the record keyed by Stripe customer ID
func (r *InMemorySubscriptionRepository) Upsert(ctx context.Context, sub domain.UserSubscription) (domain.UserSubscription, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.byCustomer[sub.StripeCustomerID]
	if exists {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		if sub.ID == uuid.Nil {
			sub.ID = uuid.New()
		}
		sub.CreatedAt = time.Now()
	}
	sub.UpdatedAt = time.Now()

	r.byCustomer[sub.StripeCustomerID] = sub

	return sub, nil
}

// PostgresSubscriptionRepository stores subscriptions in PostgreSQL
type PostgresSubscriptionRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresSubscriptionRepository creates a new PostgreSQL subscription repository
func NewPostgresSubscriptionRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		db:  db,
		log: log,
	}
}

const subscriptionColumns = `
	id, user_id, stripe_subscription_id, stripe_customer_id,
	stripe_price_id, current_period_end, created_at, updated_at
`

func scanSubscription(row pgx.Row) (domain.UserSubscription, error) {
	var sub domain.UserSubscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.StripeSubscriptionID,
		&sub.StripeCustomerID,
		&sub.StripePriceID,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	return sub, err
}

// GetByUserID returns the subscription record for a user
func (r *PostgresSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE user_id = $1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserSubscription{}, ErrNotFound
		}
		return domain.UserSubscription{}, fmt.Errorf("failed to get subscription by user: %w", err)
	}

	return sub, nil
}

// GetByCustomerID returns the subscription record for a Stripe customer
func (r *PostgresSubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (domain.UserSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE stripe_customer_id = $1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserSubscription{}, ErrNotFound
		}
		return domain.UserSubscription{}, fmt.Errorf("failed to get subscription by customer: %w", err)
	}

	return sub, nil
}

// Upsert creates or replaces the record keyed by Stripe customer ID.
// Renewal events carry the same customer, so last write wins.
func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, sub domain.UserSubscription) (domain.UserSubscription, error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	query := `
		INSERT INTO user_subscriptions (
			id, user_id, stripe_subscription_id, stripe_customer_id,
			stripe_price_id, current_period_end, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $7
		)
		ON CONFLICT (stripe_customer_id)
		DO UPDATE SET
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			stripe_price_id = EXCLUDED.stripe_price_id,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + subscriptionColumns

	stored, err := scanSubscription(r.db.QueryRow(
		ctx,
		query,
		sub.ID,
		sub.UserID,
		sub.StripeSubscriptionID,
		sub.StripeCustomerID,
		sub.StripePriceID,
		sub.CurrentPeriodEnd,
		time.Now(),
	))
	if err != nil {
		return domain.UserSubscription{}, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return stored, nil
}
