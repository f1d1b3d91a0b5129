package pricesource

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// PrimarySource is the lookup contract of the primary client.
type PrimarySource interface {
	Fetch(ctx context.Context, contractAddress, chain string) (domain.PriceUpdate, error)
}

// SecondarySource is the lookup contract of the secondary client.
type SecondarySource interface {
	Fetch(ctx context.Context, tokenID, contractAddress, chain string) (domain.PriceUpdate, error)
}

// Resolver degrades through the source tiers for a single token: primary,
// then secondary, then a synthetic placeholder. It is total: every call
// yields a usable PriceUpdate.
type Resolver struct {
	primary   PrimarySource
	secondary SecondarySource
	rng       *rand.Rand
	log       zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRand sets the randomness source for synthetic placeholders.
func WithRand(rng *rand.Rand) ResolverOption {
	return func(r *Resolver) {
		r.rng = rng
	}
}

// WithResolverLogger sets the resolver logger. Defaults to a no-op logger.
func WithResolverLogger(log zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = log
	}
}

// NewResolver creates a resolver over the two source clients.
func NewResolver(primary PrimarySource, secondary SecondarySource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		primary:   primary,
		secondary: secondary,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a price update for the token, trying primary before
// secondary before synthesizing. The secondary is only consulted after a
// primary failure; both failing never fails the caller.
func (r *Resolver) Resolve(ctx context.Context, token domain.Token) domain.PriceUpdate {
	upd, err := r.primary.Fetch(ctx, token.ContractAddress, token.Chain)
	if err == nil {
		upd.Source = domain.SourcePrimary
		return upd
	}
	r.log.Debug().
		Str("token_id", token.ID).
		Err(err).
		Msg("primary source failed, trying secondary")

	upd, err = r.secondary.Fetch(ctx, token.ID, token.ContractAddress, token.Chain)
	if err == nil {
		upd.Source = domain.SourceSecondary
		return upd
	}
	r.log.Debug().
		Str("token_id", token.ID).
		Err(err).
		Msg("secondary source failed, synthesizing placeholder")

	return r.synthesize()
}

// synthesize fabricates percent changes uniformly from [-10, 10], rounded to
// two decimals. The price stays absent: placeholders never invent a price.
func (r *Resolver) synthesize() domain.PriceUpdate {
	change1h := roundTwo(r.rng.Float64()*20 - 10)
	change24h := roundTwo(r.rng.Float64()*20 - 10)
	return domain.PriceUpdate{
		Change1h:  &change1h,
		Change24h: &change24h,
		Source:    domain.SourceSynthetic,
	}
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
