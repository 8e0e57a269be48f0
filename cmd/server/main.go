package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kredipanel/credit-engine/internal/config"
	"github.com/kredipanel/credit-engine/internal/handler"
	"github.com/kredipanel/credit-engine/internal/repository"
	"github.com/kredipanel/credit-engine/internal/service"
	"github.com/kredipanel/credit-engine/pkg/response"
)

func main() {
	// Load .env if present, real environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	creditRepo := repository.NewCreditRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	recordRepo := repository.NewPaymentRecordRepository(db)
	txManager := repository.NewTxManager(db)

	creditService := service.NewCreditService(txManager, creditRepo, installmentRepo, recordRepo, redisClient, logger)
	creditHandler := handler.NewCreditHandler(creditService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(creditHandler, healthHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() && cfg.Logging.Format != "json" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Str("service", "credit-engine").Logger()
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(creditHandler *handler.CreditHandler, healthHandler *handler.HealthHandler, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/credits", creditHandler.CreateCredit).Methods("POST")
	api.HandleFunc("/credits", creditHandler.ListCredits).Methods("GET")
	api.HandleFunc("/credits/{creditId}", creditHandler.GetCredit).Methods("GET")
	api.HandleFunc("/credits/{creditId}/installments", creditHandler.ListInstallments).Methods("GET")
	api.HandleFunc("/credits/{creditId}/payments", creditHandler.GetPaymentHistory).Methods("GET")
	api.HandleFunc("/installments/upcoming", creditHandler.ListUpcoming).Methods("GET")
	api.HandleFunc("/installments/export", creditHandler.ExportInstallments).Methods("GET")
	api.HandleFunc("/installments/{installmentId}/status", creditHandler.SetInstallmentStatus).Methods("POST")

	return router
}
