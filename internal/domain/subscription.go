package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserSubscription is the locally stored mirror of a Stripe subscription.
// At most one record exists per user; upserts are keyed by the Stripe
// customer ID.
type UserSubscription struct {
	ID                   uuid.UUID `json:"id"`
	UserID               string    `json:"user_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	StripeCustomerID     string    `json:"stripe_customer_id"`
	StripePriceID        string    `json:"stripe_price_id"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsActiveAt reports whether the subscription covers the given instant
func (s UserSubscription) IsActiveAt(now time.Time) bool {
	return s.CurrentPeriodEnd.After(now)
}
