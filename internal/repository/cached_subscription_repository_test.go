package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// fakeSubscriptionCache records cache traffic in memory
type fakeSubscriptionCache struct {
	entries     map[string]domain.UserSubscription
	invalidated []string
	failWrites  bool
}

func newFakeSubscriptionCache() *fakeSubscriptionCache {
	return &fakeSubscriptionCache{entries: make(map[string]domain.UserSubscription)}
}

func (c *fakeSubscriptionCache) GetCachedSubscription(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	sub, ok := c.entries[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (c *fakeSubscriptionCache) CacheSubscription(ctx context.Context, sub domain.UserSubscription) error {
	if c.failWrites {
		return errors.New("cache unavailable")
	}
	c.entries[sub.UserID] = sub
	return nil
}

func (c *fakeSubscriptionCache) InvalidateSubscription(ctx context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	delete(c.entries, userID)
	return nil
}

func testSubscription(userID string, periodEnd time.Time) domain.UserSubscription {
	return domain.UserSubscription{
		ID:                   uuid.New(),
		UserID:               userID,
		StripeSubscriptionID: "sub_123",
		StripeCustomerID:     "cus_123",
		StripePriceID:        "price_123",
		CurrentPeriodEnd:     periodEnd,
	}
}

func TestCachedUpsertInvalidatesBeforeRefresh(t *testing.T) {
	log := logger.New(logger.ERROR)
	cache := newFakeSubscriptionCache()
	repo := NewCachedSubscriptionRepository(NewInMemorySubscriptionRepository(log), cache, log)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, testSubscription("user-1", time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1"}, cache.invalidated)
	_, ok := cache.entries["user-1"]
	assert.True(t, ok, "upsert should leave the fresh record cached")
}

func TestCachedUpsertDropsStaleEntryWhenRefreshFails(t *testing.T) {
	log := logger.New(logger.ERROR)
	cache := newFakeSubscriptionCache()
	repo := NewCachedSubscriptionRepository(NewInMemorySubscriptionRepository(log), cache, log)
	ctx := context.Background()

	oldEnd := time.Now().Add(24 * time.Hour)
	_, err := repo.Upsert(ctx, testSubscription("user-1", oldEnd))
	require.NoError(t, err)

	cache.failWrites = true
	_, err = repo.Upsert(ctx, testSubscription("user-1", oldEnd.AddDate(0, 1, 0)))
	require.NoError(t, err, "cache failures never fail the write")

	cached, err := cache.GetCachedSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, cached, "the stale period end must not survive a failed refresh")
}

func TestCachedGetFallsBackAndPopulates(t *testing.T) {
	log := logger.New(logger.ERROR)
	cache := newFakeSubscriptionCache()
	primary := NewInMemorySubscriptionRepository(log)
	repo := NewCachedSubscriptionRepository(primary, cache, log)
	ctx := context.Background()

	stored, err := primary.Upsert(ctx, testSubscription("user-1", time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	got, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)

	cached, err := cache.GetCachedSubscription(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, cached, "a miss should populate the cache")
	assert.Equal(t, stored.ID, cached.ID)
}
