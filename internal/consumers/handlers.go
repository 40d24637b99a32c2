package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"ruta/internal/models"
	"ruta/internal/repository"
	"ruta/internal/search"

	"github.com/nats-io/stan.go"
)

// Handlers react to order lifecycle events. Their main job is propagating
// seat availability from Postgres into the search index, so that search
// results do not advertise seats that are already sold.
type Handlers struct {
	repos *repository.Repositories
	es    *search.ElasticsearchClient
}

func NewHandlers(repos *repository.Repositories, es *search.ElasticsearchClient) *Handlers {
	return &Handlers{
		repos: repos,
		es:    es,
	}
}

func (h *Handlers) HandleOrderCreated(m *stan.Msg) {
	var event models.OrderCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal order created event", "error", err)
		return
	}

	slog.Info("Processing order created event",
		"order_id", event.OrderID, "trip_id", event.TripID,
		"seats", event.SeatsCount, "via_stripe", event.ViaStripe)

	if !h.refreshTripSeats(event.TripID) {
		// No ack: redeliver and retry once the index is reachable.
		return
	}

	m.Ack()
}

func (h *Handlers) HandleOrderCancelled(m *stan.Msg) {
	var event models.OrderCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal order cancelled event", "error", err)
		return
	}

	slog.Info("Processing order cancelled event",
		"order_id", event.OrderID, "trip_id", event.TripID, "seats", event.SeatsCount)

	if !h.refreshTripSeats(event.TripID) {
		return
	}

	m.Ack()
}

func (h *Handlers) HandleOrderDeleted(m *stan.Msg) {
	var event models.OrderDeletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal order deleted event", "error", err)
		return
	}

	// Deletion only removes a cancelled order from history; seat counters
	// do not move. Log for the audit trail and ack.
	slog.Info("Order deleted", "order_id", event.OrderID, "user_id", event.UserID)

	m.Ack()
}

// refreshTripSeats re-reads the trip's authoritative seat counter and
// pushes it to the search index. Returns false if the event should be
// redelivered.
func (h *Handlers) refreshTripSeats(tripID string) bool {
	ctx := context.Background()

	trip, err := h.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		slog.Error("Failed to load trip", "trip_id", tripID, "error", err)
		return false
	}
	if trip == nil {
		// Trip is gone; nothing to sync.
		slog.Warn("Trip not found while refreshing index", "trip_id", tripID)
		return true
	}

	if err := h.es.UpdateAvailableSeats(ctx, tripID, trip.AvailableSeats); err != nil {
		slog.Error("Failed to update seats in search index",
			"trip_id", tripID, "error", err)
		return false
	}

	return true
}
