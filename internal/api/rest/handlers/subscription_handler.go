package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SufyanAli-7/Genix-AI/internal/api/rest/middleware"
	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/service"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// SubscriptionHandler reports the caller's entitlement standing
type SubscriptionHandler struct {
	entitlements service.EntitlementService
	billing      service.BillingService
	log          *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(entitlements service.EntitlementService, billing service.BillingService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		entitlements: entitlements,
		billing:      billing,
		log:          log,
	}
}

// subscriptionResponse is the payload the dashboard renders its usage
// counter and upgrade prompt from
type subscriptionResponse struct {
	Count            int        `json:"count"`
	FreeLimit        int        `json:"free_limit"`
	IsPro            bool       `json:"is_pro"`
	Allowed          bool       `json:"allowed"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// GetSubscription handles GET /api/v1/subscription
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID := middleware.UserID(c)

	entitlement, err := h.entitlements.Snapshot(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := subscriptionResponse{
		Count:     entitlement.Count,
		FreeLimit: entitlement.FreeLimit,
		IsPro:     entitlement.IsPro,
		Allowed:   entitlement.Allowed,
	}

	sub, err := h.billing.Subscription(c.Request.Context(), userID)
	if err == nil {
		resp.CurrentPeriodEnd = &sub.CurrentPeriodEnd
	} else if !errors.Is(err, domain.ErrNotFound) {
		h.log.Warn("Failed to load subscription record for user %s: %v", userID, err)
	}

	c.JSON(http.StatusOK, resp)
}
