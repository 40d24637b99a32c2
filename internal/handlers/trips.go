package handlers

import (
	"net/http"

	"ruta/internal/models"

	"github.com/gin-gonic/gin"
)

// Trip catalog handlers

// ListTrips - GET /api/trips
// Supports q (free text), date, from, to filters. The unfiltered list is
// served from the cache when one is configured.
func (h *Handlers) ListTrips(c *gin.Context) {
	query := models.ListTripsQuery{
		Query: c.Query("q"),
		Date:  c.Query("date"),
		From:  c.Query("from"),
		To:    c.Query("to"),
	}

	cacheable := h.cache != nil && query == (models.ListTripsQuery{})
	if cacheable {
		if raw, err := h.cache.GetTripsListRaw(c.Request.Context()); err == nil && raw != nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	trips, err := h.services.Trips.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.APIResponse{Success: true, Data: trips}
	if cacheable {
		h.cache.SetTripsList(c.Request.Context(), resp)
	}
	c.JSON(http.StatusOK, resp)
}

// GetTrip - GET /api/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	trip, err := h.services.Trips.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, trip)
}

// CreateTrip - POST /api/trips
func (h *Handlers) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	trip, err := h.services.Trips.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateTripsCache(c)
	respondData(c, http.StatusCreated, trip)
}

// UpdateTrip - PUT /api/trips/:id
func (h *Handlers) UpdateTrip(c *gin.Context) {
	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	trip, err := h.services.Trips.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateTripsCache(c)
	respondData(c, http.StatusOK, trip)
}

// DeleteTrip - DELETE /api/trips/:id
func (h *Handlers) DeleteTrip(c *gin.Context) {
	if err := h.services.Trips.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.invalidateTripsCache(c)
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handlers) invalidateTripsCache(c *gin.Context) {
	if h.cache != nil {
		h.cache.InvalidateTripsList(c.Request.Context())
	}
}
