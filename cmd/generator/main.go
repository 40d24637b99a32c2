package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"ruta/internal/config"
	"ruta/internal/database"
	"ruta/internal/models"
	"ruta/internal/repository"
	"ruta/internal/search"

	"github.com/joho/godotenv"
)

var (
	count   = flag.Int("count", 25, "Number of trips to generate")
	dryRun  = flag.Bool("dry-run", false, "Print generated trips without writing them")
	skipES  = flag.Bool("skip-es", false, "Seed Postgres only, without indexing into Elasticsearch")
	horizon = flag.Int("horizon", 365, "Generate departures up to this many days in the future")
)

var cities = []string{
	"Bucharest", "Cluj-Napoca", "Timisoara", "Iasi", "Brasov",
	"Sibiu", "Arad", "Oradea", "Targu Mures", "Baia Mare",
	"Suceava", "Constanta", "Craiova", "Pitesti", "Ploiesti",
	"Budapest", "Debrecen", "Szeged",
	"Vienna", "Graz", "Linz",
	"Prague", "Brno",
	"Munich", "Nuremberg", "Frankfurt", "Stuttgart", "Berlin",
	"Milan", "Venice", "Florence", "Rome", "Bologna", "Naples",
	"Paris", "Lyon", "Marseille", "Nice",
	"Ljubljana", "Zagreb", "Split",
	"Belgrade", "Novi Sad",
	"Bratislava", "Krakow", "Warsaw",
}

type tripGenerator struct {
	rng *rand.Rand
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	slog.Info("Starting trip generator...", "count", *count)

	cfg := config.Load()
	gen := &tripGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}

	trips := make([]*models.Trip, 0, *count)
	for i := 0; i < *count; i++ {
		trips = append(trips, gen.generateTrip(i))
	}

	if *dryRun {
		for _, trip := range trips {
			fmt.Printf("%s  %s -> %s  %s %s  %d seats  %d lei\n",
				trip.TripID, trip.StartCity, trip.EndCity,
				trip.StartDate, trip.StartTime, trip.AvailableSeats, trip.Price)
		}
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var es *search.ElasticsearchClient
	if !*skipES {
		es, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Error("Failed to connect to Elasticsearch", "error", err)
			os.Exit(1)
		}
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	inserted := 0
	for _, trip := range trips {
		if err := repos.Trips.Create(ctx, trip); err != nil {
			slog.Error("Failed to insert trip", "trip_id", trip.TripID, "error", err)
			continue
		}
		if es != nil {
			if err := es.IndexTrip(ctx, trip); err != nil {
				slog.Error("Failed to index trip", "trip_id", trip.TripID, "error", err)
			}
		}
		inserted++
	}

	slog.Info("Trip generation completed", "inserted", inserted, "requested", *count)
}

func (g *tripGenerator) generateTrip(index int) *models.Trip {
	startCity := g.randomCity(nil)
	endCity := g.randomCity([]string{startCity})

	departure := time.Now().
		Add(time.Duration(1+g.rng.Intn(*horizon)) * 24 * time.Hour).
		Add(time.Duration(g.rng.Intn(24*60)) * time.Minute).
		Truncate(time.Minute)
	durationHours := 4 + g.rng.Intn(27) // 4..30
	arrival := departure.Add(time.Duration(durationHours) * time.Hour)
	seats := 10 + g.rng.Intn(46) // 10..55

	startDate := departure.Format("2006-01-02")
	tripID := fmt.Sprintf("%s-%s-%s-%d",
		cityCode(startCity), cityCode(endCity),
		strings.ReplaceAll(startDate, "-", ""), index+1)

	return &models.Trip{
		TripID:         tripID,
		StartCity:      startCity,
		EndCity:        endCity,
		StartDate:      startDate,
		StartTime:      departure.Format("15:04"),
		EndDate:        arrival.Format("2006-01-02"),
		EndTime:        arrival.Format("15:04"),
		DurationHours:  durationHours,
		Price:          int64(50 + g.rng.Intn(251)), // 50..300
		TotalSeats:     seats,
		AvailableSeats: seats,
		Stops:          g.generateStops(startCity, endCity),
	}
}

func (g *tripGenerator) generateStops(startCity, endCity string) []models.Stop {
	numberOfStops := 1 + g.rng.Intn(4)
	used := []string{startCity, endCity}
	stops := make([]models.Stop, 0, numberOfStops)

	for i := 0; i < numberOfStops; i++ {
		city := g.randomCity(used)
		used = append(used, city)
		stops = append(stops, models.Stop{
			City:                city,
			StopDurationMinutes: 10 + g.rng.Intn(31),
		})
	}
	return stops
}

func (g *tripGenerator) randomCity(exclude []string) string {
	for {
		city := cities[g.rng.Intn(len(cities))]
		excluded := false
		for _, e := range exclude {
			if e == city {
				excluded = true
				break
			}
		}
		if !excluded {
			return city
		}
	}
}

func cityCode(city string) string {
	code := strings.ToUpper(city)
	if len(code) > 3 {
		code = code[:3]
	}
	return code
}
