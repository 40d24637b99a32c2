package models

// APIResponse is the envelope every endpoint answers with.
// Data is set on success, Message on failure (and on informational
// responses such as an unpaid checkout session).
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// CreateTripRequest - payload for creating a trip
type CreateTripRequest struct {
	TripID         string  `json:"tripId" binding:"required"`
	StartCity      string  `json:"startCity" binding:"required"`
	EndCity        string  `json:"endCity" binding:"required"`
	StartDate      string  `json:"startDate" binding:"required"`
	StartTime      string  `json:"startTime" binding:"required"`
	EndDate        string  `json:"endDate" binding:"required"`
	EndTime        string  `json:"endTime" binding:"required"`
	DurationHours  int     `json:"durationHours"`
	Price          int64   `json:"price"`
	AvailableSeats int     `json:"availableSeats"`
	Stops          []Stop  `json:"stops"`
	Description    *string `json:"description,omitempty"`
}

// UpdateTripRequest - payload for updating a trip; nil fields stay unchanged
type UpdateTripRequest struct {
	StartCity     *string `json:"startCity,omitempty"`
	EndCity       *string `json:"endCity,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	StartTime     *string `json:"startTime,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`
	EndTime       *string `json:"endTime,omitempty"`
	DurationHours *int    `json:"durationHours,omitempty"`
	Price         *int64  `json:"price,omitempty"`
	Stops         []Stop  `json:"stops,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// ListTripsQuery - filters accepted by the trip listing endpoint
type ListTripsQuery struct {
	Query string // free-text city search (Elasticsearch)
	Date  string // departure date, YYYY-MM-DD
	From  string // exact start city
	To    string // exact end city
}

// CreateOrderRequest - payload for a direct booking
type CreateOrderRequest struct {
	TripID     string `json:"tripId" binding:"required"`
	SeatsCount int    `json:"seatsCount"`
}

// CreateCheckoutSessionRequest - payload for starting a hosted checkout
type CreateCheckoutSessionRequest struct {
	TripID     string `json:"tripId" binding:"required"`
	SeatsCount int    `json:"seatsCount"`
}

// CheckoutSessionResponse - the provider-hosted payment page
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// VerifySessionResult is returned by the checkout verification endpoint.
// Paid=false means the provider has not confirmed payment yet; no order
// exists and none was created.
type VerifySessionResult struct {
	Paid          bool   `json:"paid"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	Order         *Order `json:"order,omitempty"`
}

// CancelOrderResponse - confirmation of a cancellation
type CancelOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// DeleteOrderResponse - confirmation of a deletion
type DeleteOrderResponse struct {
	OrderID string `json:"orderId"`
}
