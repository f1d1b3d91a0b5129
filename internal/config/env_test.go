package config

import (
	"testing"
	"time"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"POSTGRES_DSN", "CLICKHOUSE_DSN", "UPDATE_INTERVAL_SECONDS",
		"REQUEST_TIMEOUT", "METRICS_ADDR", "SUPPORTED_CHAINS",
	} {
		t.Setenv(key, "")
	}

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	if env.UpdateInterval != 300*time.Second {
		t.Errorf("Expected default interval 300s, got %v", env.UpdateInterval)
	}
	if env.RequestTimeout != 10*time.Second {
		t.Errorf("Expected default timeout 10s, got %v", env.RequestTimeout)
	}
	if env.MetricsAddr != ":9090" {
		t.Errorf("Expected default metrics addr :9090, got %q", env.MetricsAddr)
	}
	if len(env.SupportedChains) != 10 {
		t.Errorf("Expected 10 default chains, got %d", len(env.SupportedChains))
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/tokens")
	t.Setenv("UPDATE_INTERVAL_SECONDS", "60")
	t.Setenv("REQUEST_TIMEOUT", "2.5")
	t.Setenv("METRICS_ADDR", ":8081")
	t.Setenv("SUPPORTED_CHAINS", "Ethereum, bsc ,solana")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	if env.PostgresDSN != "postgres://u:p@localhost/tokens" {
		t.Errorf("Unexpected postgres dsn %q", env.PostgresDSN)
	}
	if env.UpdateInterval != time.Minute {
		t.Errorf("Expected interval 1m, got %v", env.UpdateInterval)
	}
	if env.RequestTimeout != 2500*time.Millisecond {
		t.Errorf("Expected timeout 2.5s, got %v", env.RequestTimeout)
	}
	if env.MetricsAddr != ":8081" {
		t.Errorf("Expected metrics addr :8081, got %q", env.MetricsAddr)
	}

	// Entries are trimmed and lower-cased.
	want := []string{"ethereum", "bsc", "solana"}
	if len(env.SupportedChains) != len(want) {
		t.Fatalf("Expected %d chains, got %v", len(want), env.SupportedChains)
	}
	for i, chain := range want {
		if env.SupportedChains[i] != chain {
			t.Errorf("Chain %d: expected %q, got %q", i, chain, env.SupportedChains[i])
		}
	}
}

func TestLoadEnv_BadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"garbage_interval", "UPDATE_INTERVAL_SECONDS", "five minutes"},
		{"negative_interval", "UPDATE_INTERVAL_SECONDS", "-30"},
		{"zero_timeout", "REQUEST_TIMEOUT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadEnv(); err == nil {
				t.Fatalf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestEnv_ChainSupported(t *testing.T) {
	env := Env{SupportedChains: []string{"ethereum", "bsc"}}

	if !env.ChainSupported("ethereum") {
		t.Error("Expected ethereum to be supported")
	}
	if !env.ChainSupported("Ethereum") {
		t.Error("Expected match to ignore case")
	}
	if env.ChainSupported("base") {
		t.Error("Expected base to be unsupported")
	}
}
