// Package refresh coordinates price refresh runs over the token
// population: eligibility filtering, tiered fetching with fallback,
// persistence, and per-run accounting.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/batch"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/observability"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/pricesource"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
)

// FallbackResolver produces a usable price update for tokens the primary
// tier could not serve. Implementations never fail; the last resort is a
// synthesized update.
type FallbackResolver interface {
	Resolve(ctx context.Context, token domain.Token) domain.PriceUpdate
}

// Options contains configuration for creating a Refresher.
type Options struct {
	TokenStore   storage.TokenStore          // Required: tokens to refresh and write back
	HistoryStore storage.RefreshHistoryStore // Optional: per-token outcome archive
	Primary      pricesource.PrimarySource   // Required: first-tier price source
	Resolver     FallbackResolver            // Required: second-tier resolution chain
	PrimaryTier  batch.Config                // Pacing for the primary tier. Default: batch.PrimaryTier
	FallbackTier batch.Config                // Pacing for the fallback tier. Default: batch.SecondaryTier
	Sleeper      batch.Sleeper               // Delay strategy for both tiers. Default: real clock
	Metrics      *observability.Metrics      // Optional: run and per-token counters
	Logger       *zerolog.Logger             // Default: no-op logger
	Now          func() time.Time            // Clock override for tests. Default: time.Now
}

// Refresher runs complete price refresh passes. Tokens are processed
// strictly sequentially: the primary tier covers every eligible token,
// then the fallback tier covers the tokens the primary tier failed.
type Refresher struct {
	tokenStore   storage.TokenStore
	historyStore storage.RefreshHistoryStore
	primary      pricesource.PrimarySource
	resolver     FallbackResolver
	primaryTier  *batch.Scheduler
	fallbackTier *batch.Scheduler
	metrics      *observability.Metrics
	log          zerolog.Logger
	now          func() time.Time
}

// New creates a Refresher from the given options.
func New(opts Options) *Refresher {
	primaryCfg := opts.PrimaryTier
	if primaryCfg.Size == 0 {
		primaryCfg = batch.PrimaryTier
	}
	fallbackCfg := opts.FallbackTier
	if fallbackCfg.Size == 0 {
		fallbackCfg = batch.SecondaryTier
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Refresher{
		tokenStore:   opts.TokenStore,
		historyStore: opts.HistoryStore,
		primary:      opts.Primary,
		resolver:     opts.Resolver,
		primaryTier: batch.NewScheduler(batch.Options{
			Config:  primaryCfg,
			Sleeper: opts.Sleeper,
			Logger:  opts.Logger,
		}),
		fallbackTier: batch.NewScheduler(batch.Options{
			Config:  fallbackCfg,
			Sleeper: opts.Sleeper,
			Logger:  opts.Logger,
		}),
		metrics: opts.Metrics,
		log:     logger,
		now:     now,
	}
}

// Run executes one full refresh pass and returns its summary. The only
// fatal failures are the initial token listing and cancellation; every
// per-token error is absorbed into the summary counters instead.
func (r *Refresher) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{StartedAt: r.now().UTC()}

	tokens, err := r.tokenStore.ListAll(ctx)
	if err != nil {
		summary.FinishedAt = r.now().UTC()
		r.observeRun(summary, false)
		return summary, fmt.Errorf("list tokens: %w", err)
	}

	eligible := filterEligible(tokens)
	summary.EligibleTokens = len(eligible)

	if len(eligible) == 0 {
		summary.FinishedAt = r.now().UTC()
		r.log.Info().Int("total", len(tokens)).Msg("no eligible tokens, nothing to refresh")
		r.observeRun(summary, true)
		return summary, nil
	}

	r.log.Info().
		Int("eligible", len(eligible)).
		Int("total", len(tokens)).
		Msg("starting price refresh run")

	var records []*domain.RefreshRecord
	var fallbackQueue []domain.Token

	outcomes, tierErr := r.primaryTier.Run(ctx, eligible, r.fetchPrimary)
	for _, outcome := range outcomes {
		switch {
		case outcome.FetchErr != nil:
			// Failure order is preserved so the fallback tier walks
			// tokens in the same sequence the primary tier did.
			fallbackQueue = append(fallbackQueue, outcome.Token)
			r.metrics.RecordFetchFailure(domain.SourcePrimary.String())
		case outcome.PersistErr != nil:
			summary.Failed++
			r.metrics.RecordPersistFailure()
		default:
			summary.Succeeded++
			r.metrics.RecordTokenProcessed(outcome.Update.Source.String())
		}
		if outcome.FetchErr == nil {
			records = append(records, r.record(summary.StartedAt, outcome))
		}
	}
	summary.FallbackCount = len(fallbackQueue)
	if tierErr != nil {
		summary.FinishedAt = r.now().UTC()
		r.observeRun(summary, false)
		return summary, fmt.Errorf("primary tier: %w", tierErr)
	}

	if len(fallbackQueue) > 0 {
		r.log.Info().Int("tokens", len(fallbackQueue)).Msg("running fallback tier")
		r.metrics.RecordFallback(len(fallbackQueue))

		outcomes, tierErr = r.fallbackTier.Run(ctx, fallbackQueue, r.fetchFallback)
		for _, outcome := range outcomes {
			if outcome.PersistErr != nil {
				summary.Failed++
				r.metrics.RecordPersistFailure()
			} else {
				summary.Succeeded++
				r.metrics.RecordTokenProcessed(outcome.Update.Source.String())
			}
			records = append(records, r.record(summary.StartedAt, outcome))
		}
		if tierErr != nil {
			summary.FinishedAt = r.now().UTC()
			r.observeRun(summary, false)
			return summary, fmt.Errorf("fallback tier: %w", tierErr)
		}
	}

	summary.FinishedAt = r.now().UTC()
	r.archive(ctx, records)
	r.observeRun(summary, true)

	r.log.Info().
		Int("eligible", summary.EligibleTokens).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("fallback", summary.FallbackCount).
		Dur("duration", summary.Duration()).
		Msg("price refresh run completed")

	return summary, nil
}

// fetchPrimary is the primary-tier action: fetch from the primary source
// and persist on success. Fetch failures route the token to the fallback
// queue via the outcome.
func (r *Refresher) fetchPrimary(ctx context.Context, token domain.Token) domain.FetchOutcome {
	outcome := domain.FetchOutcome{Token: token}

	update, err := r.primary.Fetch(ctx, token.ContractAddress, token.Chain)
	if err != nil {
		r.log.Warn().
			Str("token_id", token.ID).
			Str("chain", token.Chain).
			Err(err).
			Msg("primary fetch failed, queued for fallback")
		outcome.FetchErr = err
		return outcome
	}

	outcome.Update = update
	outcome.PersistErr = r.persist(ctx, token, update)
	return outcome
}

// fetchFallback is the fallback-tier action. The resolver is total, so
// the outcome never carries a fetch error.
func (r *Refresher) fetchFallback(ctx context.Context, token domain.Token) domain.FetchOutcome {
	update := r.resolver.Resolve(ctx, token)
	return domain.FetchOutcome{
		Token:      token,
		Update:     update,
		PersistErr: r.persist(ctx, token, update),
	}
}

// persist writes the non-absent fields of update to the token store with
// a fresh UTC timestamp.
func (r *Refresher) persist(ctx context.Context, token domain.Token, update domain.PriceUpdate) error {
	if err := r.tokenStore.UpdatePriceFields(ctx, token.ID, update, r.now().UTC()); err != nil {
		r.log.Warn().
			Str("token_id", token.ID).
			Str("source", update.Source.String()).
			Err(err).
			Msg("price update write failed")
		return &PersistenceError{TokenID: token.ID, Err: err}
	}

	r.log.Debug().
		Str("token_id", token.ID).
		Str("source", update.Source.String()).
		Msg("price update persisted")
	return nil
}

// record converts a resolved outcome into a history row.
func (r *Refresher) record(runStartedAt time.Time, outcome domain.FetchOutcome) *domain.RefreshRecord {
	return &domain.RefreshRecord{
		RunStartedAt: runStartedAt,
		TokenID:      outcome.Token.ID,
		Chain:        outcome.Token.Chain,
		Source:       outcome.Update.Source,
		Price:        outcome.Update.Price,
		Change1h:     outcome.Update.Change1h,
		Change24h:    outcome.Update.Change24h,
		Persisted:    outcome.PersistErr == nil,
		RecordedAt:   r.now().UTC(),
	}
}

// archive writes per-token outcomes to the history store when one is
// configured. Archive failures are logged and never affect the summary.
func (r *Refresher) archive(ctx context.Context, records []*domain.RefreshRecord) {
	if r.historyStore == nil || len(records) == 0 {
		return
	}
	if err := r.historyStore.InsertBulk(ctx, records); err != nil {
		r.log.Warn().Int("records", len(records)).Err(err).Msg("history archive failed")
		return
	}
	r.log.Debug().Int("records", len(records)).Msg("history archived")
}

// observeRun records run-level metrics.
func (r *Refresher) observeRun(summary domain.RunSummary, completed bool) {
	status := "completed"
	if !completed {
		status = "failed"
	}
	r.metrics.RecordRun(status, summary.Duration().Seconds())
	r.metrics.RecordEligible(summary.EligibleTokens)
	if completed {
		r.metrics.RecordSuccessfulRunAt(summary.FinishedAt)
	}
}

// filterEligible returns value copies of the tokens that qualify for a
// price refresh, preserving store order.
func filterEligible(tokens []*domain.Token) []domain.Token {
	var eligible []domain.Token
	for _, token := range tokens {
		if token == nil {
			continue
		}
		if token.Eligible() {
			eligible = append(eligible, *token)
		}
	}
	return eligible
}
