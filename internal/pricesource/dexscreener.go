package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// DefaultDexScreenerBaseURL is the production endpoint of the primary source.
const DefaultDexScreenerBaseURL = "https://api.dexscreener.com/latest/dex"

// dexNetworks maps chain identifiers to the primary source's chain tags.
// The two vocabularies coincide for every supported chain; unknown chains
// pass through lower-cased.
var dexNetworks = map[string]string{
	"ethereum":  "ethereum",
	"bsc":       "bsc",
	"polygon":   "polygon",
	"arbitrum":  "arbitrum",
	"optimism":  "optimism",
	"avalanche": "avalanche",
	"fantom":    "fantom",
	"solana":    "solana",
	"near":      "near",
	"flow":      "flow",
}

// DexScreener is the primary price source client. A single token lookup
// returns every trading pair the aggregator tracks for a contract address.
type DexScreener struct {
	cfg httpConfig
}

// NewDexScreener creates the primary source client.
func NewDexScreener(opts ...Option) *DexScreener {
	return &DexScreener{cfg: newHTTPConfig(DefaultDexScreenerBaseURL, opts)}
}

// Fetch issues one pair lookup for the contract address and normalizes the
// best pair into a PriceUpdate. Pair selection is deterministic: the first
// pair tagged with the resolved chain, else the first pair. The price string
// is kept verbatim, dropped only when it does not parse as a number.
func (c *DexScreener) Fetch(ctx context.Context, contractAddress, chain string) (domain.PriceUpdate, error) {
	network := resolveNetwork(dexNetworks, chain)
	url := fmt.Sprintf("%s/tokens/%s", c.cfg.baseURL, contractAddress)

	body, err := c.cfg.get(ctx, domain.SourcePrimary, contractAddress, url, nil)
	if err != nil {
		return domain.PriceUpdate{}, err
	}

	var resp dexPairsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.PriceUpdate{}, &TransportError{
			Source: domain.SourcePrimary,
			URL:    url,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}

	if len(resp.Pairs) == 0 {
		return domain.PriceUpdate{}, &NoDataError{
			Source:  domain.SourcePrimary,
			Network: network,
			Address: contractAddress,
		}
	}

	pair := resp.Pairs[0]
	for _, p := range resp.Pairs {
		if p.ChainID == network {
			pair = p
			break
		}
	}

	return domain.PriceUpdate{
		Price:     numericOrNil(pair.PriceUSD),
		Change1h:  pair.PriceChange.H1,
		Change24h: pair.PriceChange.H24,
		Source:    domain.SourcePrimary,
	}, nil
}

// resolveNetwork maps a chain identifier into a source's own vocabulary.
// Unrecognized chains pass through lower-cased, not rejected.
func resolveNetwork(table map[string]string, chain string) string {
	if network, ok := table[strings.ToLower(chain)]; ok {
		return network
	}
	return strings.ToLower(chain)
}

// numericOrNil keeps s when it parses as a decimal number, preserving the
// exact digits. Empty or unparseable strings become nil.
func numericOrNil(s string) *string {
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return nil
	}
	return &s
}

// dexPairsResponse is the raw pair lookup response from the primary source.
type dexPairsResponse struct {
	Pairs []dexPair `json:"pairs"`
}

type dexPair struct {
	ChainID     string         `json:"chainId"`
	PriceUSD    string         `json:"priceUsd"`
	PriceChange dexPriceChange `json:"priceChange"`
}

type dexPriceChange struct {
	H1  *float64 `json:"h1"`
	H24 *float64 `json:"h24"`
}
