package pricesource

import (
	"errors"
	"fmt"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// TransportError reports a failed exchange with a price source: connection
// failure, timeout, non-200 status, or an undecodable body. It always
// triggers the next fallback tier.
type TransportError struct {
	Source domain.PriceSource
	URL    string
	Status int   // HTTP status, 0 when the request never completed
	Err    error // underlying cause, nil for bare status failures
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s source: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s source: unexpected status %d", e.Source, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NoDataError reports a well-formed response that carried no records for the
// token. Like TransportError it triggers the next fallback tier.
type NoDataError struct {
	Source  domain.PriceSource
	Network string
	Address string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("%s source: no data for %s on %s", e.Source, e.Address, e.Network)
}

// IsNoData reports whether err is an empty-response outcome rather than a
// transport failure.
func IsNoData(err error) bool {
	var e *NoDataError
	return errors.As(err, &e)
}
