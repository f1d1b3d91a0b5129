// Package config loads service configuration: environment settings plus
// YAML files for batch tier pacing and token seed lists.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/batch"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/idhash"
)

// TierConfig overrides the pacing of one scheduler tier. Zero fields keep
// the built-in defaults; delays are seconds to allow sub-second values.
type TierConfig struct {
	BatchSize           int     `yaml:"batch_size"`
	BatchDelaySeconds   float64 `yaml:"batch_delay_seconds"`
	RequestDelaySeconds float64 `yaml:"request_delay_seconds"`
}

// Tiers holds the pacing overrides for both source tiers.
type Tiers struct {
	Primary   TierConfig `yaml:"primary"`
	Secondary TierConfig `yaml:"secondary"`
}

// LoadTiers reads a tier pacing file.
func LoadTiers(path string) (Tiers, error) {
	var tiers Tiers

	data, err := os.ReadFile(path)
	if err != nil {
		return tiers, fmt.Errorf("read tiers file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tiers); err != nil {
		return tiers, fmt.Errorf("parse tiers file: %w", err)
	}
	if err := tiers.validate(); err != nil {
		return tiers, err
	}
	return tiers, nil
}

func (t Tiers) validate() error {
	if err := t.Primary.validate(); err != nil {
		return fmt.Errorf("primary tier: %w", err)
	}
	if err := t.Secondary.validate(); err != nil {
		return fmt.Errorf("secondary tier: %w", err)
	}
	return nil
}

func (t TierConfig) validate() error {
	if t.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", t.BatchSize)
	}
	if t.BatchDelaySeconds < 0 {
		return fmt.Errorf("batch_delay_seconds must not be negative, got %v", t.BatchDelaySeconds)
	}
	if t.RequestDelaySeconds < 0 {
		return fmt.Errorf("request_delay_seconds must not be negative, got %v", t.RequestDelaySeconds)
	}
	return nil
}

// PrimaryBatch resolves the primary tier pacing, falling back to the
// built-in defaults field by field.
func (t Tiers) PrimaryBatch() batch.Config {
	return t.Primary.merge(batch.PrimaryTier)
}

// SecondaryBatch resolves the secondary tier pacing, falling back to the
// built-in defaults field by field.
func (t Tiers) SecondaryBatch() batch.Config {
	return t.Secondary.merge(batch.SecondaryTier)
}

func (t TierConfig) merge(def batch.Config) batch.Config {
	cfg := def
	if t.BatchSize > 0 {
		cfg.Size = t.BatchSize
	}
	if t.BatchDelaySeconds > 0 {
		cfg.BatchDelay = seconds(t.BatchDelaySeconds)
	}
	if t.RequestDelaySeconds > 0 {
		cfg.RequestDelay = seconds(t.RequestDelaySeconds)
	}
	return cfg
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// SeedToken is one token entry of a seed file.
type SeedToken struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Chain           string `yaml:"chain"`
	ContractAddress string `yaml:"contract_address"`
	Status          string `yaml:"status"`
	TokenType       string `yaml:"token_type"`
}

// seedFile is the raw seed file layout.
type seedFile struct {
	Tokens []SeedToken `yaml:"tokens"`
}

// LoadSeed reads a token seed file and converts its entries into domain
// tokens. Entries without an explicit ID get a deterministic one derived
// from chain and contract address. Status and type values must be valid.
func LoadSeed(path string) ([]*domain.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	tokens := make([]*domain.Token, 0, len(file.Tokens))
	for i, entry := range file.Tokens {
		if entry.ID == "" {
			if entry.Chain == "" || entry.ContractAddress == "" {
				return nil, fmt.Errorf("seed entry %d: missing id and no chain/contract_address to derive one", i)
			}
			entry.ID = idhash.ComputeTokenID(entry.Chain, entry.ContractAddress)
		}

		status := domain.TokenStatus(entry.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("seed entry %s: invalid status %q", entry.ID, entry.Status)
		}
		tokenType := domain.TokenType(entry.TokenType)
		if !tokenType.IsValid() {
			return nil, fmt.Errorf("seed entry %s: invalid token_type %q", entry.ID, entry.TokenType)
		}

		tokens = append(tokens, &domain.Token{
			ID:              entry.ID,
			Name:            entry.Name,
			Chain:           entry.Chain,
			ContractAddress: entry.ContractAddress,
			Status:          status,
			TokenType:       tokenType,
		})
	}
	return tokens, nil
}
