package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vn.io.arda/provisioner/internal/application"
	"vn.io.arda/provisioner/internal/config"
	"vn.io.arda/provisioner/internal/infrastructure/datadog"
	"vn.io.arda/provisioner/internal/infrastructure/gcs"
	"vn.io.arda/provisioner/internal/infrastructure/postgres"
	vaultsecrets "vn.io.arda/provisioner/internal/infrastructure/vault"
	kafkaconsumer "vn.io.arda/provisioner/internal/kafka"
	transporthttp "vn.io.arda/provisioner/internal/transport/http"
)

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("env", cfg.Server.Env).Str("port", cfg.Server.Port).Msg("starting arda-provisioner")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping failed")
	}
	log.Info().Msg("postgres connected")

	repo := postgres.New(pool)
	ledger := application.NewLedger(cfg.Server.LedgerSize)

	// ── Secret store (per-org Datadog credentials) ────────────────────────────
	secrets, err := vaultsecrets.New(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.SecretName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create vault client")
	}

	// ── Batch object store ────────────────────────────────────────────────────
	store, err := gcs.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create object store client")
	}

	// ── Datadog directory client ──────────────────────────────────────────────
	directory := datadog.New(cfg.Datadog.Site, cfg.Datadog.Timeout())

	// ── Application Service ───────────────────────────────────────────────────
	svc := application.NewService(secrets, directory, store, repo, ledger)

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(svc, ledger, repo)
	router := transporthttp.NewRouter(handler)

	// ── Kafka Consumer (bucket notifications) ─────────────────────────────────
	consumer, err := kafkaconsumer.New(
		cfg.Kafka.Brokers,
		cfg.Kafka.ConsumerGroupID,
		cfg.Kafka.Topics,
		svc,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}

	go consumer.Start(ctx)
	log.Info().Strs("topics", cfg.Kafka.Topics).Msg("kafka consumer started")

	// ── Audit Purge Job (every 24h) ───────────────────────────────────────────
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				svc.PurgeAudit(context.Background(), cfg.TTL.RetentionDays)
			case <-ctx.Done():
				return
			}
		}
	}()

	// ── Start HTTP Server ─────────────────────────────────────────────────────
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("arda-provisioner stopped")
}
