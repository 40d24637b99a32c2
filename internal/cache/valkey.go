// Package cache holds the Valkey-backed response cache for the trip
// listing. Entries are stored as raw JSON so cache hits skip the
// marshal/unmarshal round trip entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// NewValkeyClient connects to Valkey. An empty Addr disables the cache;
// callers treat a nil client as cache-off.
func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Minute
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{client: rdb, ttl: cfg.TTL}, nil
}

const tripsListKey = "trips:list"

// GetTripsListRaw returns the cached unfiltered trip listing as raw JSON.
func (v *ValkeyClient) GetTripsListRaw(ctx context.Context) ([]byte, error) {
	raw, err := v.client.Get(ctx, tripsListKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("trips list not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, nil
}

// SetTripsList stores the unfiltered trip listing. Failures are logged and
// swallowed; the cache is an optimization, never a dependency.
func (v *ValkeyClient) SetTripsList(ctx context.Context, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal trips list for cache", "error", err)
		return
	}
	if err := v.client.Set(ctx, tripsListKey, payload, v.ttl).Err(); err != nil {
		slog.Error("Failed to store trips list in cache", "error", err)
	}
}

// InvalidateTripsList drops the cached listing after a catalog mutation.
func (v *ValkeyClient) InvalidateTripsList(ctx context.Context) {
	if err := v.client.Del(ctx, tripsListKey).Err(); err != nil {
		slog.Error("Failed to invalidate trips list cache", "error", err)
	}
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
