package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment defaults.
const (
	DefaultUpdateInterval = 300 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultMetricsAddr    = ":9090"
)

// DefaultSupportedChains lists the chain identifiers the service tracks.
var DefaultSupportedChains = []string{
	"ethereum", "bsc", "polygon", "arbitrum", "optimism",
	"avalanche", "fantom", "solana", "near", "flow",
}

// Env holds the environment-driven settings of the refresh service. Flags
// layer on top of it: binaries use these values as flag defaults.
type Env struct {
	PostgresDSN      string        // POSTGRES_DSN
	ClickhouseDSN    string        // CLICKHOUSE_DSN
	DexScreenerURL   string        // DEXSCREENER_URL, empty keeps the client default
	GeckoTerminalURL string        // GECKOTERMINAL_URL, empty keeps the client default
	TiersPath        string        // TIERS_CONFIG, optional tier pacing YAML
	MetricsAddr      string        // METRICS_ADDR
	UpdateInterval   time.Duration // UPDATE_INTERVAL_SECONDS
	RequestTimeout   time.Duration // REQUEST_TIMEOUT
	SupportedChains  []string      // SUPPORTED_CHAINS, comma-separated
}

// LoadEnv reads the service settings from the environment, applying
// defaults for everything absent. Malformed numeric values are errors, not
// silently defaulted.
func LoadEnv() (Env, error) {
	env := Env{
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:    os.Getenv("CLICKHOUSE_DSN"),
		DexScreenerURL:   os.Getenv("DEXSCREENER_URL"),
		GeckoTerminalURL: os.Getenv("GECKOTERMINAL_URL"),
		TiersPath:        os.Getenv("TIERS_CONFIG"),
		MetricsAddr:      DefaultMetricsAddr,
		UpdateInterval:   DefaultUpdateInterval,
		RequestTimeout:   DefaultRequestTimeout,
		SupportedChains:  DefaultSupportedChains,
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		env.MetricsAddr = addr
	}

	interval, err := secondsEnv("UPDATE_INTERVAL_SECONDS", DefaultUpdateInterval)
	if err != nil {
		return env, err
	}
	env.UpdateInterval = interval

	timeout, err := secondsEnv("REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return env, err
	}
	env.RequestTimeout = timeout

	if chains := os.Getenv("SUPPORTED_CHAINS"); chains != "" {
		env.SupportedChains = splitChains(chains)
	}

	return env, nil
}

// ChainSupported reports whether chain is on the supported list. The match
// is case-insensitive.
func (e Env) ChainSupported(chain string) bool {
	for _, c := range e.SupportedChains {
		if strings.EqualFold(c, chain) {
			return true
		}
	}
	return false
}

// secondsEnv reads a positive seconds value from the environment.
func secondsEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("%s: invalid seconds value %q", key, raw)
	}
	if v <= 0 {
		return def, fmt.Errorf("%s: seconds value must be positive, got %v", key, v)
	}
	return seconds(v), nil
}

func splitChains(raw string) []string {
	var chains []string
	for _, part := range strings.Split(raw, ",") {
		if chain := strings.ToLower(strings.TrimSpace(part)); chain != "" {
			chains = append(chains, chain)
		}
	}
	return chains
}
