package handlers

import (
	"net/http"

	"ruta/internal/logger"
	"ruta/internal/models"

	"github.com/gin-gonic/gin"
)

// Checkout handlers

// CreateCheckoutSession - POST /api/checkout/session
// Opens a hosted payment session for the requested trip. No seats are
// held until the provider confirms payment.
func (h *Handlers) CreateCheckoutSession(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.TripID == "" {
		respondBadRequest(c, "tripId is required")
		return
	}

	session, err := h.services.Checkout.Start(c.Request.Context(), id.UID, id.Email, req.TripID, req.SeatsCount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, session)
}

// StripeWebhook - POST /api/checkout/webhook
// Unauthenticated: the payload is trusted only after its signature checks
// out. Always acknowledges handled events so the provider stops retrying.
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, "Failed to read request body")
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := h.services.Checkout.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		logger.WithContext(c.Request.Context()).Error("Webhook processing failed", "error", err)
		respondError(c, err)
		return
	}

	h.invalidateTripsCache(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "received": true})
}

// VerifyCheckoutSession - GET /api/checkout/verify/:sessionId
// Called by the frontend after the success redirect. Creates the order if
// the webhook has not done so yet.
func (h *Handlers) VerifyCheckoutSession(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	result, err := h.services.Checkout.Verify(c.Request.Context(), c.Param("sessionId"), id.UID)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Paid {
		h.invalidateTripsCache(c)
	}
	respondData(c, http.StatusOK, result)
}
