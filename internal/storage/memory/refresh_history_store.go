package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
)

// RefreshHistoryStore is an in-memory implementation of storage.RefreshHistoryStore.
type RefreshHistoryStore struct {
	mu      sync.RWMutex
	records []*domain.RefreshRecord
}

// NewRefreshHistoryStore creates a new in-memory refresh history store.
func NewRefreshHistoryStore() *RefreshHistoryStore {
	return &RefreshHistoryStore{}
}

// InsertBulk archives records in the given order. The whole batch is
// rejected when any record is invalid.
func (s *RefreshHistoryStore) InsertBulk(_ context.Context, records []*domain.RefreshRecord) error {
	for _, r := range records {
		if r == nil || r.TokenID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		recCopy := *r
		s.records = append(s.records, &recCopy)
	}
	return nil
}

// GetByTokenID retrieves archived outcomes for a token, ordered by recorded
// time ASC.
func (s *RefreshHistoryStore) GetByTokenID(_ context.Context, tokenID string) ([]*domain.RefreshRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RefreshRecord
	for _, r := range s.records {
		if r.TokenID == tokenID {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	return result, nil
}

var _ storage.RefreshHistoryStore = (*RefreshHistoryStore)(nil)
