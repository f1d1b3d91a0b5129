package domain

import "time"

// PriceSource identifies which tier produced a price update.
type PriceSource string

const (
	SourcePrimary   PriceSource = "primary"
	SourceSecondary PriceSource = "secondary"
	SourceSynthetic PriceSource = "synthetic"
)

// String returns the string representation of PriceSource.
func (s PriceSource) String() string {
	return string(s)
}

// IsValid checks if the source is a valid value.
func (s PriceSource) IsValid() bool {
	return s == SourcePrimary || s == SourceSecondary || s == SourceSynthetic
}

// PriceUpdate holds refreshed price fields for one token. Each field is
// independently optional; Price stays a decimal string so very small token
// prices keep their exact precision.
type PriceUpdate struct {
	Price     *string     // USD price as decimal string (nullable)
	Change1h  *float64    // 1h percent change (nullable)
	Change24h *float64    // 24h percent change (nullable)
	Source    PriceSource // primary | secondary | synthetic
}

// FetchOutcome records the result of one refresh attempt for one token.
// Errors are carried as values; a nil FetchErr means Update is usable.
type FetchOutcome struct {
	Token      Token
	Update     PriceUpdate
	FetchErr   error // no source yielded an update (tier 1 only)
	PersistErr error // store write failed after a usable update
}

// Succeeded reports whether the token got an update and the write stuck.
func (o FetchOutcome) Succeeded() bool {
	return o.FetchErr == nil && o.PersistErr == nil
}

// RunSummary aggregates the counters of one refresh run.
type RunSummary struct {
	EligibleTokens int       // tokens that passed the eligibility filter
	Succeeded      int       // updates fetched and persisted
	Failed         int       // persistence write failures
	FallbackCount  int       // tokens that needed the fallback tier
	StartedAt      time.Time // run start (UTC)
	FinishedAt     time.Time // run end (UTC)
}

// Duration returns the wall-clock length of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// RefreshRecord is one archived per-token refresh outcome.
// Corresponds to price_refresh_history table in ClickHouse.
type RefreshRecord struct {
	RunStartedAt time.Time   // run key, start of the owning run (UTC)
	TokenID      string      // refreshed token
	Chain        string      // token chain identifier
	Source       PriceSource // tier that produced the update
	Price        *string     // persisted price string (nullable)
	Change1h     *float64    // persisted 1h change (nullable)
	Change24h    *float64    // persisted 24h change (nullable)
	Persisted    bool        // whether the store write succeeded
	RecordedAt   time.Time   // when the outcome was produced (UTC)
}
