package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// DefaultGeckoTerminalBaseURL is the production endpoint of the secondary source.
const DefaultGeckoTerminalBaseURL = "https://api.geckoterminal.com/api/v2"

// gtNetworks maps chain identifiers to the secondary source's network keys,
// which use its own abbreviations. Unknown chains pass through lower-cased.
var gtNetworks = map[string]string{
	"ethereum":  "eth",
	"bsc":       "bsc",
	"polygon":   "polygon_pos",
	"arbitrum":  "arbitrum",
	"optimism":  "optimism",
	"avalanche": "avax",
	"fantom":    "ftm",
	"solana":    "solana",
	"near":      "near",
}

// GeckoTerminal is the secondary price source client. It looks up the
// liquidity pools of a token and reads price data off the first pool.
type GeckoTerminal struct {
	cfg httpConfig
}

// NewGeckoTerminal creates the secondary source client.
func NewGeckoTerminal(opts ...Option) *GeckoTerminal {
	return &GeckoTerminal{cfg: newHTTPConfig(DefaultGeckoTerminalBaseURL, opts)}
}

// Fetch issues one pool lookup for the token and normalizes the first pool
// into a PriceUpdate. The pool order of the source is trusted as-is; percent
// changes arrive string-encoded and unparseable values become absent.
func (c *GeckoTerminal) Fetch(ctx context.Context, tokenID, contractAddress, chain string) (domain.PriceUpdate, error) {
	network := resolveNetwork(gtNetworks, chain)
	url := fmt.Sprintf("%s/networks/%s/tokens/%s/pools", c.cfg.baseURL, network, contractAddress)

	header := http.Header{}
	header.Set("accept", "application/json")

	body, err := c.cfg.get(ctx, domain.SourceSecondary, tokenID, url, header)
	if err != nil {
		return domain.PriceUpdate{}, err
	}

	var resp gtPoolsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.PriceUpdate{}, &TransportError{
			Source: domain.SourceSecondary,
			URL:    url,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}

	if len(resp.Data) == 0 {
		return domain.PriceUpdate{}, &NoDataError{
			Source:  domain.SourceSecondary,
			Network: network,
			Address: contractAddress,
		}
	}

	attrs := resp.Data[0].Attributes

	var price *string
	if attrs.BaseTokenPriceUSD != nil {
		price = numericOrNil(*attrs.BaseTokenPriceUSD)
	}

	return domain.PriceUpdate{
		Price:     price,
		Change1h:  percentOrNil(attrs.PriceChangePercentage.H1),
		Change24h: percentOrNil(attrs.PriceChangePercentage.H24),
		Source:    domain.SourceSecondary,
	}, nil
}

// percentOrNil parses a string-encoded percent field, absent when missing or
// unparseable.
func percentOrNil(s *string) *float64 {
	if s == nil {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// gtPoolsResponse is the raw pool lookup response from the secondary source.
type gtPoolsResponse struct {
	Data []gtPool `json:"data"`
}

type gtPool struct {
	Attributes gtPoolAttributes `json:"attributes"`
}

type gtPoolAttributes struct {
	BaseTokenPriceUSD     *string         `json:"base_token_price_usd"`
	PriceChangePercentage gtChangeWindows `json:"price_change_percentage"`
}

type gtChangeWindows struct {
	H1  *string `json:"h1"`
	H24 *string `json:"h24"`
}
