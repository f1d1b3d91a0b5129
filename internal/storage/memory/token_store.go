package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token // keyed by id
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]*domain.Token)}
}

// Insert adds a new token. Returns ErrDuplicateKey if id already exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}
	if !t.Status.IsValid() || !t.TokenType.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	tokenCopy := *t
	s.tokens[t.ID] = &tokenCopy
	return nil
}

// GetByID retrieves a token by ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(_ context.Context, id string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tokens[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// ListAll retrieves every token, ordered by creation time then ID.
func (s *TokenStore) ListAll(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// UpdatePriceFields writes the present fields of upd plus updatedAt.
// Returns ErrNotFound if the token does not exist.
func (s *TokenStore) UpdatePriceFields(_ context.Context, id string, upd domain.PriceUpdate, updatedAt time.Time) error {
	if id == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tokens[id]
	if !exists {
		return storage.ErrNotFound
	}

	if upd.Price != nil {
		t.CurrentPrice = upd.Price
	}
	if upd.Change1h != nil {
		t.Price1hChange = upd.Change1h
	}
	if upd.Change24h != nil {
		t.Price24hChange = upd.Change24h
	}
	t.UpdatedAt = updatedAt
	return nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
