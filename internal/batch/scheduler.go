package batch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// Default tier configurations, sized to each source's observed rate limit.
var (
	PrimaryTier = Config{
		Size:         10,
		BatchDelay:   2 * time.Second,
		RequestDelay: 100 * time.Millisecond,
	}
	SecondaryTier = Config{
		Size:         2,
		BatchDelay:   20 * time.Second,
		RequestDelay: 100 * time.Millisecond,
	}
)

// Config fixes the pacing of one scheduler tier for a run.
type Config struct {
	Size         int           // tokens per batch, positive
	BatchDelay   time.Duration // pause between consecutive batches
	RequestDelay time.Duration // pause between tokens inside a batch
}

// Action produces the outcome for one token.
type Action func(ctx context.Context, token domain.Token) domain.FetchOutcome

// Scheduler walks a token list strictly sequentially in fixed-size batches,
// pausing between tokens and between batches. No two tokens are ever in
// flight at once.
type Scheduler struct {
	cfg     Config
	sleeper Sleeper
	log     zerolog.Logger
}

// Options contains configuration for creating a Scheduler.
type Options struct {
	Config  Config
	Sleeper Sleeper         // Default: ContextSleeper
	Logger  *zerolog.Logger // Default: no-op logger
}

// NewScheduler creates a scheduler for one source tier.
func NewScheduler(opts Options) *Scheduler {
	cfg := opts.Config
	if cfg.Size <= 0 {
		cfg.Size = 1
	}

	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = ContextSleeper{}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Scheduler{
		cfg:     cfg,
		sleeper: sleeper,
		log:     logger,
	}
}

// Run invokes the action exactly once per token, in input order, and returns
// the outcomes in that order. The inter-request delay runs after every token
// except a batch's last; the inter-batch delay runs after every batch except
// the last. Cancellation during a delay stops the walk, returning the
// outcomes collected so far together with the context error.
func (s *Scheduler) Run(ctx context.Context, tokens []domain.Token, action Action) ([]domain.FetchOutcome, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	chunks := Partition(tokens, s.cfg.Size)
	outcomes := make([]domain.FetchOutcome, 0, len(tokens))

	for ci, chunk := range chunks {
		s.log.Debug().
			Int("batch", ci+1).
			Int("batches", len(chunks)).
			Int("tokens", len(chunk)).
			Msg("processing batch")

		for ti, token := range chunk {
			outcomes = append(outcomes, action(ctx, token))

			if ti < len(chunk)-1 {
				if err := s.sleeper.Sleep(ctx, s.cfg.RequestDelay); err != nil {
					return outcomes, err
				}
			}
		}

		if ci < len(chunks)-1 {
			s.log.Debug().
				Dur("delay", s.cfg.BatchDelay).
				Msg("waiting before next batch")
			if err := s.sleeper.Sleep(ctx, s.cfg.BatchDelay); err != nil {
				return outcomes, err
			}
		}
	}

	return outcomes, nil
}

// Partition splits tokens into consecutive chunks of at most size, keeping
// input order. The final chunk may be smaller; concatenating the chunks
// reproduces the input.
func Partition(tokens []domain.Token, size int) [][]domain.Token {
	if size <= 0 || len(tokens) == 0 {
		return nil
	}

	chunks := make([][]domain.Token, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[start:end])
	}
	return chunks
}
