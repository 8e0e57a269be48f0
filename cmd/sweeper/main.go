package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/kredipanel/credit-engine/internal/config"
	"github.com/kredipanel/credit-engine/internal/repository"
	"github.com/kredipanel/credit-engine/internal/service"
)

// sweepTimeout bounds a single full recompute pass.
const sweepTimeout = 30 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	creditRepo := repository.NewCreditRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	recordRepo := repository.NewPaymentRecordRepository(db)
	txManager := repository.NewTxManager(db)

	// The sweeper does not serve reads, so it runs without the summary cache.
	creditService := service.NewCreditService(txManager, creditRepo, installmentRepo, recordRepo, nil, logger)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		recomputed, err := creditService.SweepRecompute(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("sweep failed")
			return
		}
		logger.Info().Int("credits", recomputed).Msg("sweep finished")
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSweepLocation()))
	if _, err := c.AddFunc(cfg.Sweep.Schedule, sweep); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Sweep.Schedule).Msg("failed to schedule sweep")
	}

	c.Start()
	logger.Info().Str("schedule", cfg.Sweep.Schedule).Str("timezone", cfg.Sweep.Timezone).Msg("sweeper started")

	// Run once at startup so a restart never skips a day.
	sweep()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down sweeper")
	<-c.Stop().Done()
	logger.Info().Msg("sweeper stopped")
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

	return logger.Level(level).With().Timestamp().Str("service", "credit-engine-sweeper").Logger()
}
