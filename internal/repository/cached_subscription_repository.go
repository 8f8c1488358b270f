package repository

import (
	"context"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// SubscriptionCache is the cache surface the caching repository needs
type SubscriptionCache interface {
	GetCachedSubscription(ctx context.Context, userID string) (*domain.UserSubscription, error)
	CacheSubscription(ctx context.Context, sub domain.UserSubscription) error
	InvalidateSubscription(ctx context.Context, userID string) error
}

// CachedSubscriptionRepository implements SubscriptionRepository with a
// Redis read-through cache in front of the primary store. Cache errors
// never fail the request; they degrade to the underlying repository.
type CachedSubscriptionRepository struct {
	repo  SubscriptionRepository
	cache SubscriptionCache
	log   *logger.Logger
}

// NewCachedSubscriptionRepository creates a new caching repository
func NewCachedSubscriptionRepository(
	repo SubscriptionRepository,
	cache SubscriptionCache,
	log *logger.Logger,
) SubscriptionRepository {
	return &CachedSubscriptionRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetByUserID checks the cache first and falls back to the primary store
func (r *CachedSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	cached, err := r.cache.GetCachedSubscription(ctx, userID)
	if err != nil {
		r.log.Warnw("Error reading subscription from cache", "error", err, "userID", userID)
	}
	if cached != nil {
		r.log.Debugw("Subscription found in cache", "userID", userID)
		return *cached, nil
	}

	sub, err := r.repo.GetByUserID(ctx, userID)
	if err != nil {
		return domain.UserSubscription{}, err
	}

	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after fetch", "error", err, "userID", userID)
	}

	return sub, nil
}

// GetByCustomerID always hits the primary store; webhook processing is
// not on the hot path
func (r *CachedSubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (domain.UserSubscription, error) {
	return r.repo.GetByCustomerID(ctx, customerID)
}

// Upsert writes through to the primary store. The stale cache entry is
// invalidated before the refresh so a failed refresh can never leave
// the old record behind.
func (r *CachedSubscriptionRepository) Upsert(ctx context.Context, sub domain.UserSubscription) (domain.UserSubscription, error) {
	stored, err := r.repo.Upsert(ctx, sub)
	if err != nil {
		return domain.UserSubscription{}, err
	}

	if err := r.cache.InvalidateSubscription(ctx, stored.UserID); err != nil {
		r.log.Warnw("Failed to invalidate cached subscription on upsert", "error", err, "userID", stored.UserID)
	}

	if err := r.cache.CacheSubscription(ctx, stored); err != nil {
		r.log.Warnw("Failed to cache subscription after upsert", "error", err, "userID", stored.UserID)
	}

	return stored, nil
}
