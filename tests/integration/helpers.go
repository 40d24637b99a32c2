package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ruta/internal/middleware"
	"ruta/internal/models"
)

// These tests run against a live API instance. They are skipped unless
// RUTA_API_URL points at one; RUTA_JWT_SECRET must match the server's.

// TestClient is a thin typed wrapper over the booking API.
type TestClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewTestClient(t *testing.T, uid, email string) *TestClient {
	t.Helper()

	baseURL := os.Getenv("RUTA_API_URL")
	if baseURL == "" {
		t.Skip("RUTA_API_URL not set, skipping integration test")
	}

	secret := os.Getenv("RUTA_JWT_SECRET")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	return &TestClient{
		baseURL: baseURL,
		token:   "Bearer " + signed,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *TestClient) do(t *testing.T, method, path string, body interface{}, wantStatus int) json.RawMessage {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: failed to decode envelope: %v", method, path, err)
	}

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: got status %d (message %q), want %d",
			method, path, resp.StatusCode, env.Message, wantStatus)
	}

	return env.Data
}

func (c *TestClient) CreateTrip(t *testing.T, req *models.CreateTripRequest) *models.Trip {
	t.Helper()
	data := c.do(t, http.MethodPost, "/api/trips", req, http.StatusCreated)
	var trip models.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		t.Fatalf("failed to decode trip: %v", err)
	}
	return &trip
}

func (c *TestClient) GetTrip(t *testing.T, tripID string) *models.Trip {
	t.Helper()
	data := c.do(t, http.MethodGet, "/api/trips/"+tripID, nil, http.StatusOK)
	var trip models.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		t.Fatalf("failed to decode trip: %v", err)
	}
	return &trip
}

func (c *TestClient) CreateOrder(t *testing.T, tripID string, seats int) *models.Order {
	t.Helper()
	data := c.do(t, http.MethodPost, "/api/orders",
		models.CreateOrderRequest{TripID: tripID, SeatsCount: seats}, http.StatusCreated)
	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		t.Fatalf("failed to decode order: %v", err)
	}
	return &order
}

func (c *TestClient) CancelOrder(t *testing.T, orderID string) {
	t.Helper()
	c.do(t, http.MethodPatch, "/api/orders/"+orderID+"/cancel", nil, http.StatusOK)
}

func (c *TestClient) DeleteTrip(t *testing.T, tripID string) {
	t.Helper()
	c.do(t, http.MethodDelete, "/api/trips/"+tripID, nil, http.StatusOK)
}

// futureTripRequest builds a bookable trip departing comfortably outside
// the cancellation window.
func futureTripRequest(suffix string) *models.CreateTripRequest {
	departure := time.Now().Add(10 * 24 * time.Hour)
	arrival := departure.Add(14 * time.Hour)

	return &models.CreateTripRequest{
		TripID:         fmt.Sprintf("BUC-VIE-%s-%s", departure.Format("20060102"), suffix),
		StartCity:      "Bucharest",
		EndCity:        "Vienna",
		StartDate:      departure.Format("2006-01-02"),
		StartTime:      departure.Format("15:04"),
		EndDate:        arrival.Format("2006-01-02"),
		EndTime:        arrival.Format("15:04"),
		DurationHours:  14,
		Price:          100,
		AvailableSeats: 5,
		Stops: []models.Stop{
			{City: "Budapest", StopDurationMinutes: 30},
		},
	}
}
