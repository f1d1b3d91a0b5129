package storage

import (
	"context"
	"time"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Token, error)

	// ListAll retrieves every token, ordered by creation time ASC.
	ListAll(ctx context.Context) ([]*domain.Token, error)

	// UpdatePriceFields writes the present fields of upd plus updatedAt to
	// the token row; absent fields keep their stored values. Returns
	// ErrNotFound if the token does not exist.
	UpdatePriceFields(ctx context.Context, id string, upd domain.PriceUpdate, updatedAt time.Time) error
}

// RefreshHistoryStore provides access to price_refresh_history storage.
type RefreshHistoryStore interface {
	// InsertBulk archives the per-token outcomes of one refresh run.
	InsertBulk(ctx context.Context, records []*domain.RefreshRecord) error

	// GetByTokenID retrieves archived outcomes for a token, ordered by
	// recorded time ASC.
	GetByTokenID(ctx context.Context, tokenID string) ([]*domain.RefreshRecord, error)
}
