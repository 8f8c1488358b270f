package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// MetadataUserIDKey is the checkout-session metadata key that carries
// our user ID through Stripe and back in webhook payloads.
const MetadataUserIDKey = "userId"

// SubscriptionInfo is the slice of a Stripe subscription this service
// cares about. CurrentPeriodEnd is nil when Stripe did not report one.
type SubscriptionInfo struct {
	ID               string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd *time.Time
}

// Client defines the Stripe API surface used by the billing flow.
type Client interface {
	// GetSubscription fetches one subscription by its Stripe ID.
	GetSubscription(ctx context.Context, subscriptionID string) (SubscriptionInfo, error)
}

// WebhookVerifier checks a webhook payload against its signature header
// and returns the parsed event.
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (stripe.Event, error)
}

// stripeClient implements Client on the official SDK.
type stripeClient struct {
	client *client.API
	log    *logger.Logger
}

// NewStripeClient creates a new Stripe API client.
func NewStripeClient(apiKey string, log *logger.Logger) Client {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &stripeClient{
		client: sc,
		log:    log,
	}
}

// GetSubscription fetches a subscription and maps it to SubscriptionInfo.
func (sc *stripeClient) GetSubscription(ctx context.Context, subscriptionID string) (SubscriptionInfo, error) {
	params := &stripe.SubscriptionParams{
		Params: stripe.Params{
			Context: ctx,
		},
	}

	sub, err := sc.client.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		logStripeError(sc.log, "GetSubscription", err)
		return SubscriptionInfo{}, fmt.Errorf("stripe: failed to fetch subscription %s: %w", subscriptionID, err)
	}

	info := SubscriptionInfo{
		ID: sub.ID,
	}
	if sub.Customer != nil {
		info.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		info.PriceID = sub.Items.Data[0].Price.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		info.CurrentPeriodEnd = &end
	} else {
		sc.log.Warnw("Stripe subscription carries no current period end", "stripeSubscriptionID", sub.ID)
	}

	sc.log.Debugw("Fetched Stripe subscription", "stripeSubscriptionID", sub.ID, "stripeCustomerID", info.CustomerID)
	return info, nil
}

// signatureVerifier implements WebhookVerifier on the SDK webhook package.
type signatureVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for the given endpoint secret
// (whsec_...).
func NewWebhookVerifier(secret string) (WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	return &signatureVerifier{secret: secret}, nil
}

// Verify checks the Stripe-Signature header and parses the event.
func (v *signatureVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, v.secret)
}

// logStripeError logs the structured details of a Stripe API error.
func logStripeError(log *logger.Logger, operation string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		log.Errorw("Stripe API error",
			"operation", operation,
			"type", string(stripeErr.Type),
			"code", string(stripeErr.Code),
			"message", stripeErr.Msg,
			"request_id", stripeErr.RequestID,
			"status_code", stripeErr.HTTPStatusCode,
		)
	} else {
		log.Errorw("Non-Stripe error during Stripe operation",
			"operation", operation,
			"error", err,
		)
	}
}
