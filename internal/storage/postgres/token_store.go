package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Insert adds a new token. Returns ErrDuplicateKey if id exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}
	if !t.Status.IsValid() || !t.TokenType.IsValid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tokens (
			id, name, chain, contract_address, status, token_type,
			current_price, price_1h_change, price_24h_change, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
	`

	var createdAt *time.Time
	if !t.CreatedAt.IsZero() {
		createdAt = &t.CreatedAt
	}

	_, err := s.pool.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Chain,
		t.ContractAddress,
		string(t.Status),
		string(t.TokenType),
		t.CurrentPrice,
		t.Price1hChange,
		t.Price24hChange,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	query := `
		SELECT id, name, chain, contract_address, status, token_type,
		       current_price, price_1h_change, price_24h_change, created_at, updated_at
		FROM tokens
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	t, err := scanToken(row)
	if err != nil {
		if isNoRows(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by id: %w", err)
	}
	return t, nil
}

// ListAll retrieves every token, ordered by creation time.
func (s *TokenStore) ListAll(ctx context.Context) ([]*domain.Token, error) {
	query := `
		SELECT id, name, chain, contract_address, status, token_type,
		       current_price, price_1h_change, price_24h_change, created_at, updated_at
		FROM tokens
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// UpdatePriceFields writes the present fields of upd plus updated_at.
// Absent fields arrive as NULL and the COALESCE keeps the stored value.
// Returns ErrNotFound if the token does not exist.
func (s *TokenStore) UpdatePriceFields(ctx context.Context, id string, upd domain.PriceUpdate, updatedAt time.Time) error {
	if id == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE tokens
		SET current_price    = COALESCE($2, current_price),
		    price_1h_change  = COALESCE($3, price_1h_change),
		    price_24h_change = COALESCE($4, price_24h_change),
		    updated_at       = $5
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		id,
		upd.Price,
		upd.Change1h,
		upd.Change24h,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update token price fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var statusStr, typeStr string
	var updatedAt *time.Time

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Chain,
		&t.ContractAddress,
		&statusStr,
		&typeStr,
		&t.CurrentPrice,
		&t.Price1hChange,
		&t.Price24hChange,
		&t.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TokenStatus(statusStr)
	t.TokenType = domain.TokenType(typeStr)
	if updatedAt != nil {
		t.UpdatedAt = *updatedAt
	}
	return &t, nil
}

// scanTokens scans multiple rows into a slice of Token.
func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var tokens []*domain.Token

	for rows.Next() {
		var t domain.Token
		var statusStr, typeStr string
		var updatedAt *time.Time

		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Chain,
			&t.ContractAddress,
			&statusStr,
			&typeStr,
			&t.CurrentPrice,
			&t.Price1hChange,
			&t.Price24hChange,
			&t.CreatedAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}

		t.Status = domain.TokenStatus(statusStr)
		t.TokenType = domain.TokenType(typeStr)
		if updatedAt != nil {
			t.UpdatedAt = *updatedAt
		}
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}
