package pricesource

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// DebugRecord captures one exchange with a price source for post-hoc
// inspection. Exactly one of Response and Err is populated.
type DebugRecord struct {
	Token    string             // token as the caller knows it: contract address (primary) or token id (secondary)
	Source   domain.PriceSource // which client produced the record
	URL      string             // full request URL
	Response string             // raw body, truncated
	Err      string             // failure description
	At       time.Time          // when the exchange finished (UTC)
}

// DebugHook receives one DebugRecord per source call. Hooks must not block;
// they run inline on the fetch path.
type DebugHook func(DebugRecord)

// LogHook returns a DebugHook that writes records to log at debug level.
func LogHook(log zerolog.Logger) DebugHook {
	return func(rec DebugRecord) {
		ev := log.Debug().
			Str("token", rec.Token).
			Str("source", rec.Source.String()).
			Str("url", rec.URL)
		if rec.Err != "" {
			ev = ev.Str("error", rec.Err)
		} else {
			ev = ev.Str("response", rec.Response)
		}
		ev.Msg("price source exchange")
	}
}
