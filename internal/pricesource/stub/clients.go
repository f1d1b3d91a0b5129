package stub

import (
	"context"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/pricesource"
)

// PrimaryClient returns scripted updates for testing.
// Implements pricesource.PrimarySource.
type PrimaryClient struct {
	Updates map[string]domain.PriceUpdate // keyed by contract address
	Err     error                         // overrides the default no-data failure
	Calls   []string                      // contract addresses in fetch order
}

// NewPrimaryClient creates a stub primary source with no scripted updates.
func NewPrimaryClient() *PrimaryClient {
	return &PrimaryClient{Updates: make(map[string]domain.PriceUpdate)}
}

// Fetch returns the scripted update for the contract address. Unscripted
// addresses fail with Err when set, otherwise with a no-data outcome.
func (c *PrimaryClient) Fetch(_ context.Context, contractAddress, chain string) (domain.PriceUpdate, error) {
	c.Calls = append(c.Calls, contractAddress)
	if upd, ok := c.Updates[contractAddress]; ok {
		return upd, nil
	}
	if c.Err != nil {
		return domain.PriceUpdate{}, c.Err
	}
	return domain.PriceUpdate{}, &pricesource.NoDataError{
		Source:  domain.SourcePrimary,
		Network: chain,
		Address: contractAddress,
	}
}

// Add scripts an update for a contract address.
func (c *PrimaryClient) Add(contractAddress string, upd domain.PriceUpdate) {
	c.Updates[contractAddress] = upd
}

// SecondaryClient returns scripted updates for testing.
// Implements pricesource.SecondarySource.
type SecondaryClient struct {
	Updates map[string]domain.PriceUpdate // keyed by contract address
	Err     error                         // overrides the default no-data failure
	Calls   []string                      // contract addresses in fetch order
}

// NewSecondaryClient creates a stub secondary source with no scripted updates.
func NewSecondaryClient() *SecondaryClient {
	return &SecondaryClient{Updates: make(map[string]domain.PriceUpdate)}
}

// Fetch returns the scripted update for the contract address. Unscripted
// addresses fail with Err when set, otherwise with a no-data outcome.
func (c *SecondaryClient) Fetch(_ context.Context, _, contractAddress, chain string) (domain.PriceUpdate, error) {
	c.Calls = append(c.Calls, contractAddress)
	if upd, ok := c.Updates[contractAddress]; ok {
		return upd, nil
	}
	if c.Err != nil {
		return domain.PriceUpdate{}, c.Err
	}
	return domain.PriceUpdate{}, &pricesource.NoDataError{
		Source:  domain.SourceSecondary,
		Network: chain,
		Address: contractAddress,
	}
}

// Add scripts an update for a contract address.
func (c *SecondaryClient) Add(contractAddress string, upd domain.PriceUpdate) {
	c.Updates[contractAddress] = upd
}

var _ pricesource.PrimarySource = (*PrimaryClient)(nil)
var _ pricesource.SecondarySource = (*SecondaryClient)(nil)
