// Package main provides the token price refresh service:
// - Refresh (scheduled): batched source fetches with two-tier fallback
// - Persistence: price fields written back to PostgreSQL
// - Archive: per-run outcome history in ClickHouse
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/config"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/observability"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/pricesource"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/refresh"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
	chstore "github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage/clickhouse"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage/memory"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage/migrations"
	pgstore "github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage/postgres"
)

// Server holds the HTTP surface of the refresh service.
type Server struct {
	interval  time.Duration
	useMemory bool
	startedAt time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	tokenStore   storage.TokenStore
	historyStore storage.RefreshHistoryStore
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	env, envErr := config.LoadEnv()

	// Parse flags (environment settings as defaults)
	postgresDSN := flag.String("postgres-dsn", env.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", env.ClickhouseDSN, "ClickHouse connection string")
	dexScreenerURL := flag.String("dexscreener-url", env.DexScreenerURL, "DexScreener API base URL override")
	geckoTerminalURL := flag.String("geckoterminal-url", env.GeckoTerminalURL, "GeckoTerminal API base URL override")
	tiersPath := flag.String("tiers", env.TiersPath, "Path to batch tier config YAML")
	interval := flag.Duration("interval", env.UpdateInterval, "Refresh run interval")
	httpTimeout := flag.Duration("http-timeout", env.RequestTimeout, "Price source request timeout")
	once := flag.Bool("once", false, "Run a single refresh pass and exit")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	metricsAddr := flag.String("metrics-addr", env.MetricsAddr, "Prometheus metrics HTTP address")
	debug := flag.Bool("debug", false, "Enable debug logging and response capture")

	flag.Parse()

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := log.Logger

	if envErr != nil {
		logger.Fatal().Err(envErr).Msg("Invalid environment configuration")
	}

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Load batch tier config, defaults apply for absent fields
	var tiers config.Tiers
	if *tiersPath != "" {
		var err error
		tiers, err = config.LoadTiers(*tiersPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load tier config")
		}
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create stores")
	}
	defer cleanup()

	// Create price sources and the fallback chain
	primary := pricesource.NewDexScreener(sourceOptions(*dexScreenerURL, *httpTimeout, *debug, logger)...)
	secondary := pricesource.NewGeckoTerminal(sourceOptions(*geckoTerminalURL, *httpTimeout, *debug, logger)...)
	resolver := pricesource.NewResolver(primary, secondary, pricesource.WithResolverLogger(logger))

	refresher := refresh.New(refresh.Options{
		TokenStore:   stores.tokenStore,
		HistoryStore: stores.historyStore,
		Primary:      primary,
		Resolver:     resolver,
		PrimaryTier:  tiers.PrimaryBatch(),
		FallbackTier: tiers.SecondaryBatch(),
		Metrics:      observability.DefaultMetrics,
		Logger:       &logger,
	})

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received signal, initiating graceful shutdown")
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("Received second signal, forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	server := &Server{
		interval:  *interval,
		useMemory: *useMemory,
		startedAt: time.Now(),
	}
	go server.startHTTPServer(*metricsAddr, logger)

	// Run the refresh service
	if *once {
		_, err = refresher.Run(ctx)
	} else {
		err = refresher.RunEvery(ctx, *interval)
	}
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Refresh service error")
	}

	logger.Info().Msg("Shutdown complete")
}

// sourceOptions builds the client options shared by both price sources.
func sourceOptions(baseURL string, timeout time.Duration, debug bool, logger zerolog.Logger) []pricesource.Option {
	opts := []pricesource.Option{
		pricesource.WithTimeout(timeout),
		pricesource.WithLogger(logger),
	}
	if baseURL != "" {
		opts = append(opts, pricesource.WithBaseURL(baseURL))
	}
	if debug {
		opts = append(opts, pricesource.WithDebugHook(pricesource.LogHook(logger)))
	}
	return opts
}

// createStores creates all required stores. Migrations run on the real
// backends before any store is handed out.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			tokenStore:   memory.NewTokenStore(),
			historyStore: memory.NewRefreshHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.Connect(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.ApplyPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.Bootstrap(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.ApplyClickhouse(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		tokenStore:   pgstore.NewTokenStore(pool),
		historyStore: chstore.NewRefreshHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	logger.Info().Str("addr", addr).Msg("Starting HTTP server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("HTTP server error")
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
	Interval  string    `json:"interval"`
	Storage   string    `json:"storage"`
}

// handleStatus returns service status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	backend := "postgres+clickhouse"
	if s.useMemory {
		backend = "memory"
	}

	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.startedAt).String(),
		StartedAt: s.startedAt,
		Interval:  s.interval.String(),
		Storage:   backend,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
