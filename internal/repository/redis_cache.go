package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

const (
	subscriptionKeyPrefix = "subscription:user:"

	// TTL for cached subscription records
	defaultCacheTTL = 15 * time.Minute
)

// RedisCacheRepository caches subscription lookups in Redis. The
// subscription status is read on every generation request, so the hot
// path goes through here instead of PostgreSQL.
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close closes the Redis connection
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

// CacheSubscription caches a subscription record keyed by user
func (r *RedisCacheRepository) CacheSubscription(ctx context.Context, sub domain.UserSubscription) error {
	key := subscriptionKeyPrefix + sub.UserID

	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache subscription: %w", err)
	}

	r.log.Debugw("Subscription cached", "userID", sub.UserID)
	return nil
}

// GetCachedSubscription returns the cached record for a user, or nil on a miss
func (r *RedisCacheRepository) GetCachedSubscription(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	key := subscriptionKeyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached subscription: %w", err)
	}

	var sub domain.UserSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached subscription: %w", err)
	}

	return &sub, nil
}

// InvalidateSubscription removes the cached record for a user
func (r *RedisCacheRepository) InvalidateSubscription(ctx context.Context, userID string) error {
	key := subscriptionKeyPrefix + userID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached subscription: %w", err)
	}

	return nil
}
