package refresh

import "fmt"

// PersistenceError wraps a storage failure for a single token's price
// update. It marks the token as failed for the run without aborting it.
type PersistenceError struct {
	TokenID string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist price update for token %s: %v", e.TokenID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
