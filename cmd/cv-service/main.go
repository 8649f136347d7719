package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ehstaff/ehstaff-backend/internal/cv/aiagent"
	"github.com/ehstaff/ehstaff-backend/internal/cv/events"
	"github.com/ehstaff/ehstaff-backend/internal/cv/extract"
	"github.com/ehstaff/ehstaff-backend/internal/cv/handler"
	"github.com/ehstaff/ehstaff-backend/internal/cv/repository"
	"github.com/ehstaff/ehstaff-backend/internal/cv/service"
	"github.com/ehstaff/ehstaff-backend/internal/embedding"
	"github.com/ehstaff/ehstaff-backend/pkg/config"
	"github.com/ehstaff/ehstaff-backend/pkg/database"
	"github.com/ehstaff/ehstaff-backend/pkg/httputil"
	"github.com/ehstaff/ehstaff-backend/pkg/logger"
	"github.com/ehstaff/ehstaff-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.Load("cv-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("cv-service", cfg.Server.Environment)
	log.Info().Msg("starting CV Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	sink, err := messaging.NewPublisher(rmq, messaging.ExchangeCVEvents, "cv-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	publisher := events.NewCasePublisher(sink, log)

	// Initialize durable file store
	store, err := extract.NewDiskStore(cfg.Uploads.Path, cfg.Uploads.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize uploads store")
	}

	// Initialize AI agent client
	agent := aiagent.New(cfg.Agent.BaseURL, cfg.Agent.AgentID, cfg.Agent.APIKey, cfg.Agent.Timeout)
	if !agent.Available() {
		log.Warn().Msg("ai agent not configured, heuristic parser only")
	}

	// Initialize embedding service
	embedder := embedding.NewService(
		embedding.NewOpenAIEmbedder(cfg.Embeddings.BaseURL, cfg.Embeddings.APIKey, cfg.Embeddings.Model),
		embedding.NewRepository(db),
		log,
	)

	// Initialize repository and worker pool
	cvRepo := repository.NewCVRepository(db)
	pool := service.NewPool(cfg.Worker.PoolSize, cfg.Worker.QueueSize, log)
	defer pool.Close()

	// Initialize service and handler
	cvService := service.NewCVService(cvRepo, store, agent, embedder, publisher, pool, cfg.Uploads.MaxFileSize, log)
	cvHandler := handler.NewHandler(cvService, cfg.Uploads.MaxFileSize, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.UserID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "cv-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		cvHandler.RegisterRoutes(r)
	})

	// Serve stored uploads
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Path))))

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
