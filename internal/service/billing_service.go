package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/kafka/producer"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// checkoutPeriodFallback covers checkout events whose payload omitted
// the billing period end. One month of access matches what the first
// invoice on a monthly plan would grant.
const checkoutPeriodFallback = 30 * 24 * time.Hour

// BillingService applies verified billing events to the local
// subscription mirror. Handlers are idempotent: re-delivering an event
// converges on the same record.
type BillingService interface {
	// HandleCheckoutCompleted activates the subscription a user just
	// paid for through checkout.
	HandleCheckoutCompleted(ctx context.Context, event domain.CheckoutCompletedEvent) error

	// HandleRenewal extends the period of an existing subscription after
	// a recurring payment. An unknown customer is a no-op.
	HandleRenewal(ctx context.Context, event domain.RenewalEvent) error

	// Subscription returns the user's current subscription record.
	Subscription(ctx context.Context, userID string) (domain.UserSubscription, error)
}

type billingService struct {
	subs   repository.SubscriptionRepository
	events producer.EventProducer
	now    func() time.Time
	log    *logger.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(subs repository.SubscriptionRepository, events producer.EventProducer, log *logger.Logger) BillingService {
	if events == nil {
		events = producer.NopEventProducer{}
	}
	return &billingService{
		subs:   subs,
		events: events,
		now:    time.Now,
		log:    log,
	}
}

func (s *billingService) HandleCheckoutCompleted(ctx context.Context, event domain.CheckoutCompletedEvent) error {
	periodEnd := s.now().Add(checkoutPeriodFallback)
	if event.CurrentPeriodEnd != nil {
		periodEnd = *event.CurrentPeriodEnd
	} else {
		s.log.Warn("Checkout event for user %s carries no period end, granting %s of access",
			event.UserID, checkoutPeriodFallback)
	}

	sub := domain.UserSubscription{
		ID:                   uuid.New(),
		UserID:               event.UserID,
		StripeSubscriptionID: event.SubscriptionID,
		StripeCustomerID:     event.CustomerID,
		StripePriceID:        event.PriceID,
		CurrentPeriodEnd:     periodEnd,
	}

	saved, err := s.subs.Upsert(ctx, sub)
	if err != nil {
		s.log.Error("Failed to store subscription for user %s: %v", event.UserID, err)
		return err
	}

	s.log.Info("Activated subscription %s for user %s until %s",
		saved.StripeSubscriptionID, saved.UserID, saved.CurrentPeriodEnd.Format(time.RFC3339))

	s.publishUpdate(ctx, saved)
	return nil
}

func (s *billingService) HandleRenewal(ctx context.Context, event domain.RenewalEvent) error {
	existing, err := s.subs.GetByCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A renewal for a customer this service never saw; nothing
			// to extend, the event still gets acknowledged upstream.
			s.log.Warn("Renewal for unknown customer %s ignored", event.CustomerID)
			return nil
		}
		s.log.Error("Failed to look up customer %s: %v", event.CustomerID, err)
		return err
	}

	periodEnd := s.now().AddDate(0, 1, 0)
	if event.CurrentPeriodEnd != nil {
		periodEnd = *event.CurrentPeriodEnd
	} else {
		s.log.Warn("Renewal event for customer %s carries no period end, extending one month",
			event.CustomerID)
	}

	existing.CurrentPeriodEnd = periodEnd
	if event.PriceID != "" {
		existing.StripePriceID = event.PriceID
	}
	if event.SubscriptionID != "" {
		existing.StripeSubscriptionID = event.SubscriptionID
	}

	saved, err := s.subs.Upsert(ctx, existing)
	if err != nil {
		s.log.Error("Failed to extend subscription for customer %s: %v", event.CustomerID, err)
		return err
	}

	s.log.Info("Extended subscription %s for user %s until %s",
		saved.StripeSubscriptionID, saved.UserID, saved.CurrentPeriodEnd.Format(time.RFC3339))

	s.publishUpdate(ctx, saved)
	return nil
}

func (s *billingService) Subscription(ctx context.Context, userID string) (domain.UserSubscription, error) {
	if userID == "" {
		return domain.UserSubscription{}, domain.ErrUnauthenticated
	}

	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.UserSubscription{}, domain.ErrNotFound
		}
		return domain.UserSubscription{}, err
	}
	return sub, nil
}

func (s *billingService) publishUpdate(ctx context.Context, sub domain.UserSubscription) {
	event := producer.SubscriptionEvent{
		UserID:           sub.UserID,
		CustomerID:       sub.StripeCustomerID,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		Timestamp:        s.now(),
	}
	if err := s.events.PublishSubscriptionUpdated(ctx, event); err != nil {
		s.log.Warn("Failed to publish subscription event for user %s: %v", sub.UserID, err)
	}
}
