package domain

import "time"

// TokenStatus represents the moderation status of a token listing.
type TokenStatus string

const (
	StatusPending  TokenStatus = "pending"
	StatusApproved TokenStatus = "approved"
	StatusRejected TokenStatus = "rejected"
)

// String returns the string representation of TokenStatus.
func (s TokenStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s TokenStatus) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// TokenType represents the launch stage of a token listing.
type TokenType string

const (
	TypeLaunched TokenType = "launched"
	TypePresale  TokenType = "presale"
	TypeOther    TokenType = "other"
)

// String returns the string representation of TokenType.
func (t TokenType) String() string {
	return string(t)
}

// IsValid checks if the type is a valid value.
func (t TokenType) IsValid() bool {
	return t == TypeLaunched || t == TypePresale || t == TypeOther
}

// Token represents a listed token with its last known price metadata.
// Corresponds to tokens table in PostgreSQL.
type Token struct {
	ID              string      // PRIMARY KEY, opaque listing key
	Name            string      // display name
	Chain           string      // chain identifier (ethereum, bsc, ...)
	ContractAddress string      // chain-specific contract address
	Status          TokenStatus // pending | approved | rejected
	TokenType       TokenType   // launched | presale | other
	CurrentPrice    *string     // USD price as decimal string (nullable)
	Price1hChange   *float64    // 1h percent change (nullable)
	Price24hChange  *float64    // 24h percent change (nullable)
	CreatedAt       time.Time   // record creation timestamp
	UpdatedAt       time.Time   // last price refresh timestamp
}

// Eligible reports whether the token qualifies for a price refresh:
// approved status, launched or presale type, and a populated contract
// address. Tokens failing any of the three are skipped for the whole run.
func (t Token) Eligible() bool {
	if t.ContractAddress == "" {
		return false
	}
	if t.Status != StatusApproved {
		return false
	}
	return t.TokenType == TypeLaunched || t.TokenType == TypePresale
}
