package domain

import "time"

// Billing event types this service reacts to; everything else delivered
// to the webhook endpoint is acknowledged and ignored.
const (
	BillingEventCheckoutCompleted = "checkout.session.completed"
	BillingEventInvoicePaid       = "invoice.payment_succeeded"
)

// CheckoutCompletedEvent carries the fields of a verified
// checkout-completed billing event. CurrentPeriodEnd is nil when the
// provider omitted it from the payload.
type CheckoutCompletedEvent struct {
	UserID           string
	SubscriptionID   string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd *time.Time
}

// RenewalEvent carries the fields of a verified payment-succeeded event
// for a recurring invoice.
type RenewalEvent struct {
	SubscriptionID   string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd *time.Time
}
