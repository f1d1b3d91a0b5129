// Package main provides the token seeding utility. It loads token
// definitions from a YAML file and inserts them into the registry.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/config"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage/migrations"
	pgstore "github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	env, envErr := config.LoadEnv()

	// Parse flags (environment settings as defaults)
	file := flag.String("file", "tokens.yaml", "Path to token seed YAML")
	postgresDSN := flag.String("postgres-dsn", env.PostgresDSN, "PostgreSQL connection string")

	flag.Parse()

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	logger := log.Logger

	if envErr != nil {
		logger.Fatal().Err(envErr).Msg("Invalid environment configuration")
	}

	// Validate required flags
	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required")
	}

	// Load seed tokens
	tokens, err := config.LoadSeed(*file)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load seed file")
	}
	if len(tokens) == 0 {
		logger.Warn().Str("file", *file).Msg("Seed file contains no tokens")
		return
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
		cancel()
	}()

	// Connect and migrate
	pool, err := pgstore.Connect(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pool.Close()

	if err := migrations.ApplyPostgres(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	store := pgstore.NewTokenStore(pool)

	// Insert tokens, skipping ones already present
	inserted, skipped := 0, 0
	for _, token := range tokens {
		if token.Chain != "" && !env.ChainSupported(token.Chain) {
			logger.Warn().Str("id", token.ID).Str("chain", token.Chain).Msg("Chain not on the supported list")
		}
		err := store.Insert(ctx, token)
		switch {
		case err == nil:
			inserted++
			logger.Info().Str("id", token.ID).Str("chain", token.Chain).Msg("Token inserted")
		case errors.Is(err, storage.ErrDuplicateKey):
			skipped++
			logger.Warn().Str("id", token.ID).Msg("Token already exists, skipping")
		default:
			logger.Fatal().Err(err).Str("id", token.ID).Msg("Failed to insert token")
		}
	}

	logger.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("Seeding complete")
}
