package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v78"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/stripe"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// staticVerifier accepts any payload with the expected header value
type staticVerifier struct {
	event stripego.Event
	err   error
}

func (v staticVerifier) Verify(payload []byte, sigHeader string) (stripego.Event, error) {
	if v.err != nil {
		return stripego.Event{}, v.err
	}
	return v.event, nil
}

// stubStripeClient returns one canned subscription
type stubStripeClient struct {
	info stripe.SubscriptionInfo
	err  error
}

func (c stubStripeClient) GetSubscription(ctx context.Context, subscriptionID string) (stripe.SubscriptionInfo, error) {
	return c.info, c.err
}

// recordingBilling captures the events the handler forwards
type recordingBilling struct {
	checkout *domain.CheckoutCompletedEvent
	renewal  *domain.RenewalEvent
	err      error
}

func (b *recordingBilling) HandleCheckoutCompleted(ctx context.Context, event domain.CheckoutCompletedEvent) error {
	b.checkout = &event
	return b.err
}

func (b *recordingBilling) HandleRenewal(ctx context.Context, event domain.RenewalEvent) error {
	b.renewal = &event
	return b.err
}

func (b *recordingBilling) Subscription(ctx context.Context, userID string) (domain.UserSubscription, error) {
	return domain.UserSubscription{}, domain.ErrNotFound
}

func webhookEvent(t *testing.T, eventType string, object any) stripego.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripego.Event{
		ID:   "evt_1",
		Type: stripego.EventType(eventType),
		Data: &stripego.EventData{Raw: raw},
	}
}

func performWebhook(t *testing.T, verifier stripe.WebhookVerifier, client stripe.Client, billing *recordingBilling) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewWebhookHandler(verifier, client, billing, logger.New(logger.ERROR))

	router := gin.New()
	router.POST("/webhooks/stripe", handler.HandleStripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(staticVerifier{}, stubStripeClient{}, &recordingBilling{}, logger.New(logger.ERROR))

	router := gin.New()
	router.POST("/webhooks/stripe", handler.HandleStripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	billing := &recordingBilling{}

	rec := performWebhook(t, staticVerifier{err: errors.New("bad signature")}, stubStripeClient{}, billing)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, billing.checkout)
}

func TestWebhookCheckoutCompletedActivates(t *testing.T) {
	periodEnd := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	verifier := staticVerifier{
		event: webhookEvent(t, domain.BillingEventCheckoutCompleted, map[string]any{
			"id":           "cs_1",
			"metadata":     map[string]string{"userId": "user-1"},
			"subscription": "sub_123",
			"customer":     "cus_123",
		}),
	}
	client := stubStripeClient{info: stripe.SubscriptionInfo{
		ID:               "sub_123",
		CustomerID:       "cus_123",
		PriceID:          "price_123",
		CurrentPeriodEnd: &periodEnd,
	}}
	billing := &recordingBilling{}

	rec := performWebhook(t, verifier, client, billing)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, billing.checkout)
	assert.Equal(t, "user-1", billing.checkout.UserID)
	assert.Equal(t, "sub_123", billing.checkout.SubscriptionID)
	assert.Equal(t, "cus_123", billing.checkout.CustomerID)
	require.NotNil(t, billing.checkout.CurrentPeriodEnd)
	assert.True(t, periodEnd.Equal(*billing.checkout.CurrentPeriodEnd))
}

func TestWebhookCheckoutWithoutUserIsAcknowledged(t *testing.T) {
	verifier := staticVerifier{
		event: webhookEvent(t, domain.BillingEventCheckoutCompleted, map[string]any{
			"id":           "cs_1",
			"subscription": "sub_123",
		}),
	}
	billing := &recordingBilling{}

	rec := performWebhook(t, verifier, stubStripeClient{}, billing)

	assert.Equal(t, http.StatusOK, rec.Code, "unattributable events are acknowledged so Stripe stops retrying")
	assert.Nil(t, billing.checkout)
}

func TestWebhookInvoicePaidRenews(t *testing.T) {
	periodEnd := time.Now().Add(60 * 24 * time.Hour).UTC().Truncate(time.Second)
	verifier := staticVerifier{
		event: webhookEvent(t, domain.BillingEventInvoicePaid, map[string]any{
			"id":           "in_1",
			"customer":     "cus_123",
			"subscription": "sub_123",
		}),
	}
	client := stubStripeClient{info: stripe.SubscriptionInfo{
		ID:               "sub_123",
		CustomerID:       "cus_123",
		PriceID:          "price_123",
		CurrentPeriodEnd: &periodEnd,
	}}
	billing := &recordingBilling{}

	rec := performWebhook(t, verifier, client, billing)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, billing.renewal)
	assert.Equal(t, "cus_123", billing.renewal.CustomerID)
	assert.Equal(t, "sub_123", billing.renewal.SubscriptionID)
}

func TestWebhookInvoiceWithoutSubscriptionIsAcknowledged(t *testing.T) {
	verifier := staticVerifier{
		event: webhookEvent(t, domain.BillingEventInvoicePaid, map[string]any{
			"id":       "in_1",
			"customer": "cus_123",
		}),
	}
	billing := &recordingBilling{}

	rec := performWebhook(t, verifier, stubStripeClient{}, billing)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, billing.renewal, "one-off invoices must not extend a subscription")
}

func TestWebhookUnhandledEventIsAcknowledged(t *testing.T) {
	verifier := staticVerifier{
		event: webhookEvent(t, "customer.created", map[string]any{"id": "cus_9"}),
	}
	billing := &recordingBilling{}

	rec := performWebhook(t, verifier, stubStripeClient{}, billing)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, billing.checkout)
	assert.Nil(t, billing.renewal)
}

func TestWebhookBillingFailureAnswers500(t *testing.T) {
	verifier := staticVerifier{
		event: webhookEvent(t, domain.BillingEventCheckoutCompleted, map[string]any{
			"id":           "cs_1",
			"metadata":     map[string]string{"userId": "user-1"},
			"subscription": "sub_123",
		}),
	}
	billing := &recordingBilling{err: errors.New("database down")}

	rec := performWebhook(t, verifier, stubStripeClient{}, billing)

	assert.Equal(t, http.StatusInternalServerError, rec.Code, "transient failures must trigger a Stripe retry")
}
