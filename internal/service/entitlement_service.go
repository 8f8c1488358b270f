package service

import (
	"context"
	"errors"
	"time"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// EntitlementService decides whether a user may run another generation
// and keeps the free-tier counter up to date.
type EntitlementService interface {
	// IsAllowed reports whether the user may start a generation right now.
	IsAllowed(ctx context.Context, userID string) (bool, error)
	// RecordUsage bumps the free-tier counter after a successful generation.
	// Active subscribers are not metered.
	RecordUsage(ctx context.Context, userID string) error
	// Snapshot returns the user's current usage and subscription standing.
	Snapshot(ctx context.Context, userID string) (domain.Entitlement, error)
}

type entitlementService struct {
	usage     repository.UsageRepository
	subs      repository.SubscriptionRepository
	freeLimit int
	now       func() time.Time
	log       *logger.Logger
}

// NewEntitlementService creates a new entitlement service. A freeLimit of
// zero or less falls back to the default free generation allowance.
func NewEntitlementService(usage repository.UsageRepository, subs repository.SubscriptionRepository, freeLimit int, log *logger.Logger) EntitlementService {
	if freeLimit <= 0 {
		freeLimit = domain.FreeGenerationLimit
	}
	return &entitlementService{
		usage:     usage,
		subs:      subs,
		freeLimit: freeLimit,
		now:       time.Now,
		log:       log,
	}
}

func (s *entitlementService) IsAllowed(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrUnauthenticated
	}

	if s.hasActiveSubscription(ctx, userID) {
		return true, nil
	}

	count, err := s.usage.Get(ctx, userID)
	if err != nil {
		s.log.Error("Failed to read usage counter for user %s: %v", userID, err)
		return false, err
	}

	return count < s.freeLimit, nil
}

func (s *entitlementService) RecordUsage(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}

	// Subscribers are unlimited, keep their counter frozen where it was.
	if s.hasActiveSubscription(ctx, userID) {
		return nil
	}

	if err := s.usage.Increment(ctx, userID); err != nil {
		s.log.Error("Failed to increment usage counter for user %s: %v", userID, err)
		return err
	}

	return nil
}

func (s *entitlementService) Snapshot(ctx context.Context, userID string) (domain.Entitlement, error) {
	if userID == "" {
		return domain.Entitlement{}, domain.ErrUnauthenticated
	}

	isPro := s.hasActiveSubscription(ctx, userID)

	count, err := s.usage.Get(ctx, userID)
	if err != nil {
		s.log.Error("Failed to read usage counter for user %s: %v", userID, err)
		return domain.Entitlement{}, err
	}

	return domain.Entitlement{
		UserID:    userID,
		Count:     count,
		FreeLimit: s.freeLimit,
		IsPro:     isPro,
		Allowed:   isPro || count < s.freeLimit,
	}, nil
}

// hasActiveSubscription checks the subscription store. Lookup failures
// degrade to the free-tier counter check instead of granting access.
func (s *entitlementService) hasActiveSubscription(ctx context.Context, userID string) bool {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Subscription lookup failed for user %s, falling back to usage counter: %v", userID, err)
		}
		return false
	}
	return sub.IsActiveAt(s.now())
}
