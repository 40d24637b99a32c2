package handlers

import (
	"net/http"

	"ruta/internal/models"

	"github.com/gin-gonic/gin"
)

// Order handlers. All routes here sit behind the auth middleware.

// CreateOrder - POST /api/orders
// Books seats directly, without going through checkout.
func (h *Handlers) CreateOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.TripID == "" {
		respondBadRequest(c, "tripId is required")
		return
	}

	order, err := h.services.Orders.Create(c.Request.Context(), id.UID, id.Email, req.TripID, req.SeatsCount, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateTripsCache(c)
	respondData(c, http.StatusCreated, order)
}

// ListMyOrders - GET /api/orders/my
func (h *Handlers) ListMyOrders(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	orders, err := h.services.Orders.ListMine(c.Request.Context(), id.UID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

// GetOrder - GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	order, err := h.services.Orders.Get(c.Request.Context(), c.Param("id"), id.UID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// CancelOrder - PATCH /api/orders/:id/cancel
// Cancels a confirmed booking and returns its seats to the trip.
func (h *Handlers) CancelOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	order, err := h.services.Orders.Cancel(c.Request.Context(), c.Param("id"), id.UID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateTripsCache(c)
	respondData(c, http.StatusOK, models.CancelOrderResponse{
		OrderID: order.OrderID,
		Status:  order.Status,
	})
}

// DeleteOrder - DELETE /api/orders/:id
// Removes a cancelled booking from the caller's history.
func (h *Handlers) DeleteOrder(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.services.Orders.Delete(c.Request.Context(), c.Param("id"), id.UID); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, models.DeleteOrderResponse{
		OrderID: c.Param("id"),
	})
}
