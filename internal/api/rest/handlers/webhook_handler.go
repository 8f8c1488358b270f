package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v78"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/service"
	"github.com/SufyanAli-7/Genix-AI/internal/stripe"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// Stripe recommends capping webhook bodies at around 64kb
const maxRequestBodySize = int64(65536)

// WebhookHandler receives billing events from Stripe. Events this
// service cannot act on are acknowledged with 200 so Stripe stops
// retrying them; only transient processing failures answer 500.
type WebhookHandler struct {
	verifier stripe.WebhookVerifier
	client   stripe.Client
	billing  service.BillingService
	log      *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier stripe.WebhookVerifier, client stripe.Client, billing service.BillingService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		client:   client,
		billing:  billing,
		log:      log,
	}
}

// HandleStripeWebhook handles POST /webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize)
	payload, err := io.ReadAll(c.Request.Body)
	defer c.Request.Body.Close()
	if err != nil {
		h.log.Errorw("Failed to read webhook request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		h.log.Warnw("Missing Stripe-Signature header")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Stripe-Signature header"})
		return
	}

	event, err := h.verifier.Verify(payload, sigHeader)
	if err != nil {
		h.log.Errorw("Webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	h.log.Infow("Received verified Stripe event", "eventID", event.ID, "eventType", event.Type)

	switch string(event.Type) {
	case domain.BillingEventCheckoutCompleted:
		err = h.handleCheckoutCompleted(ctx, event)
	case domain.BillingEventInvoicePaid:
		err = h.handleInvoicePaid(ctx, event)
	default:
		h.log.Debugw("Ignoring unhandled event type", "eventID", event.ID, "eventType", event.Type)
	}

	if err != nil {
		h.log.Errorw("Error processing webhook event", "error", err, "eventID", event.ID, "eventType", event.Type)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error processing webhook"})
		return
	}

	c.Status(http.StatusOK)
}

// handleCheckoutCompleted activates the subscription paid for through
// checkout. A session without our user ID in its metadata cannot be
// attributed to anyone, so it is logged and acknowledged.
func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripego.Event) error {
	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.log.Errorw("Failed to parse checkout session payload", "error", err, "eventID", event.ID)
		return nil
	}

	userID := session.Metadata[stripe.MetadataUserIDKey]
	if userID == "" {
		h.log.Warnw("Checkout session carries no user ID metadata, acknowledging without action",
			"eventID", event.ID, "sessionID", session.ID)
		return nil
	}

	if session.Subscription == nil || session.Subscription.ID == "" {
		h.log.Warnw("Checkout session carries no subscription, acknowledging without action",
			"eventID", event.ID, "sessionID", session.ID)
		return nil
	}

	info, err := h.client.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}

	customerID := info.CustomerID
	if customerID == "" && session.Customer != nil {
		customerID = session.Customer.ID
	}

	return h.billing.HandleCheckoutCompleted(ctx, domain.CheckoutCompletedEvent{
		UserID:           userID,
		SubscriptionID:   info.ID,
		CustomerID:       customerID,
		PriceID:          info.PriceID,
		CurrentPeriodEnd: info.CurrentPeriodEnd,
	})
}

// handleInvoicePaid extends an existing subscription after a recurring
// payment. Invoices without a subscription are one-off payments and
// get acknowledged without action.
func (h *WebhookHandler) handleInvoicePaid(ctx context.Context, event stripego.Event) error {
	var invoice stripego.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.log.Errorw("Failed to parse invoice payload", "error", err, "eventID", event.ID)
		return nil
	}

	if invoice.Customer == nil || invoice.Customer.ID == "" {
		h.log.Warnw("Invoice carries no customer, acknowledging without action", "eventID", event.ID)
		return nil
	}

	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		h.log.Warnw("Invoice carries no subscription, acknowledging without action",
			"eventID", event.ID, "customerID", invoice.Customer.ID)
		return nil
	}

	info, err := h.client.GetSubscription(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}

	return h.billing.HandleRenewal(ctx, domain.RenewalEvent{
		SubscriptionID:   info.ID,
		CustomerID:       invoice.Customer.ID,
		PriceID:          info.PriceID,
		CurrentPeriodEnd: info.CurrentPeriodEnd,
	})
}
