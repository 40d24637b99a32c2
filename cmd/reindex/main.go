package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"ruta/internal/config"
	"ruta/internal/database"
	"ruta/internal/repository"
	"ruta/internal/search"

	"github.com/joho/godotenv"
)

// reindex rebuilds the Elasticsearch trips index from Postgres, the
// system of record. Run it after index loss or mapping changes.

var seatsOnly = flag.Bool("seats-only", false, "Only refresh seat counters for already-indexed trips")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	slog.Info("Starting trip reindex...")

	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Error("Failed to connect to Elasticsearch", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	trips, err := repos.Trips.List(ctx, "", "", "")
	if err != nil {
		slog.Error("Failed to load trips", "error", err)
		os.Exit(1)
	}

	synced, failed := 0, 0
	for i := range trips {
		trip := &trips[i]

		if *seatsOnly {
			err = es.UpdateAvailableSeats(ctx, trip.TripID, trip.AvailableSeats)
		} else {
			err = es.IndexTrip(ctx, trip)
		}
		if err != nil {
			slog.Error("Failed to sync trip", "trip_id", trip.TripID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.Info("Reindex completed", "synced", synced, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
