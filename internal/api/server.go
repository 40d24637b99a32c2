package api

import (
	"fmt"
	"net/http"

	"ruta/internal/cache"
	"ruta/internal/config"
	"ruta/internal/database"
	"ruta/internal/external"
	"ruta/internal/handlers"
	"ruta/internal/logger"
	"ruta/internal/messaging"
	"ruta/internal/middleware"
	"ruta/internal/policy"
	"ruta/internal/repository"
	"ruta/internal/search"
	"ruta/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server with all of its backing connections.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	es       *search.ElasticsearchClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer wires the full application: database, search index, cache,
// message bus, payment provider, repositories, services and routes.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		logger.Fatal("Failed to connect to Valkey", "error", err)
	}

	stripeClient := external.NewStripeClient(cfg.Stripe)

	repos := repository.NewRepositories(db)

	services := service.NewServices(repos, esClient, natsClient, stripeClient, service.Options{
		FrontendURL: cfg.FrontendURL,
		Rules:       policy.Rules{CancelNotice: cfg.CancelNotice()},
	})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		es:       esClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.New(s.services, s.valkey)
	auth := middleware.Auth(s.config.JWTSecret)

	api := s.router.Group("/api")
	{
		trips := api.Group("/trips")
		{
			trips.GET("", h.ListTrips)
			trips.GET("/:id", h.GetTrip)
			trips.POST("", auth, h.CreateTrip)
			trips.PUT("/:id", auth, h.UpdateTrip)
			trips.DELETE("/:id", auth, h.DeleteTrip)
		}

		orders := api.Group("/orders")
		orders.Use(auth)
		{
			orders.POST("", h.CreateOrder)
			orders.GET("/my", h.ListMyOrders)
			orders.GET("/:id", h.GetOrder)
			orders.PATCH("/:id/cancel", h.CancelOrder)
			orders.DELETE("/:id", h.DeleteOrder)
		}

		checkout := api.Group("/checkout")
		{
			checkout.POST("/session", auth, h.CreateCheckoutSession)
			// No auth: Stripe signs the payload instead.
			checkout.POST("/webhook", h.StripeWebhook)
			checkout.GET("/verify/:sessionId", auth, h.VerifyCheckoutSession)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck reports dependency status: the database is load-bearing,
// the search index is advisory.
func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.Health(c.Request.Context())

	esStatus := "ok"
	if s.es != nil {
		if err := s.es.HealthCheck(c.Request.Context()); err != nil {
			esStatus = "unavailable"
		}
	} else {
		esStatus = "disabled"
	}

	status := http.StatusOK
	overall := "ok"
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "ruta-api",
		"database": gin.H{
			"status": dbHealth.Status,
			"pool":   dbHealth.Stats,
		},
		"elasticsearch": esStatus,
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router, for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backing connections
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
