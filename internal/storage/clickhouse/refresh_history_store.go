package clickhouse

import (
	"context"
	"fmt"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
)

// RefreshHistoryStore implements storage.RefreshHistoryStore using ClickHouse.
type RefreshHistoryStore struct {
	conn *Conn
}

// NewRefreshHistoryStore creates a new RefreshHistoryStore.
func NewRefreshHistoryStore(conn *Conn) *RefreshHistoryStore {
	return &RefreshHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RefreshHistoryStore = (*RefreshHistoryStore)(nil)

// InsertBulk archives records in the given order. The whole batch is rejected
// when any record is invalid, and nothing is written.
func (s *RefreshHistoryStore) InsertBulk(ctx context.Context, records []*domain.RefreshRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r == nil || r.TokenID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_refresh_history (
			run_started_at, token_id, chain, source,
			price, change_1h, change_24h, persisted, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.RunStartedAt, r.TokenID, r.Chain, string(r.Source),
			r.Price, r.Change1h, r.Change24h, r.Persisted, r.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTokenID retrieves all archived records for a token, ordered by recorded time ASC.
func (s *RefreshHistoryStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.RefreshRecord, error) {
	query := `
		SELECT run_started_at, token_id, chain, source,
		       price, change_1h, change_24h, persisted, recorded_at
		FROM price_refresh_history
		WHERE token_id = ?
		ORDER BY recorded_at ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query by token id: %w", err)
	}
	defer rows.Close()

	return scanRefreshRecords(rows)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanRefreshRecords scans multiple rows into a slice.
func scanRefreshRecords(rows chRows) ([]*domain.RefreshRecord, error) {
	var records []*domain.RefreshRecord

	for rows.Next() {
		var r domain.RefreshRecord
		var source string

		err := rows.Scan(
			&r.RunStartedAt, &r.TokenID, &r.Chain, &source,
			&r.Price, &r.Change1h, &r.Change24h, &r.Persisted, &r.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan refresh record row: %w", err)
		}

		r.Source = domain.PriceSource(source)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh record rows: %w", err)
	}

	return records, nil
}
