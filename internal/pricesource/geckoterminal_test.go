package pricesource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

func TestGeckoTerminal_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/networks/eth/tokens/0xabc/pools" {
			t.Errorf("expected path /networks/eth/tokens/0xabc/pools, got %s", r.URL.Path)
		}
		if accept := r.Header.Get("accept"); accept != "application/json" {
			t.Errorf("expected accept application/json, got %q", accept)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{"attributes": {
					"base_token_price_usd": "1.2345",
					"price_change_percentage": {"h1": "0.12", "h24": "-3.4"}
				}},
				{"attributes": {
					"base_token_price_usd": "9.99",
					"price_change_percentage": {"h1": "9.9", "h24": "9.9"}
				}}
			]
		}`))
	}))
	defer server.Close()

	client := NewGeckoTerminal(WithBaseURL(server.URL))
	ctx := context.Background()

	upd, err := client.Fetch(ctx, "tok1", "0xabc", "ethereum")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if upd.Source != domain.SourceSecondary {
		t.Errorf("expected secondary source, got %s", upd.Source)
	}

	// The source's pool order decides: the first pool wins.
	if upd.Price == nil || *upd.Price != "1.2345" {
		t.Errorf("expected price 1.2345, got %v", upd.Price)
	}
	if upd.Change1h == nil || *upd.Change1h != 0.12 {
		t.Errorf("expected h1 0.12, got %v", upd.Change1h)
	}
	if upd.Change24h == nil || *upd.Change24h != -3.4 {
		t.Errorf("expected h24 -3.4, got %v", upd.Change24h)
	}
}

func TestGeckoTerminal_Fetch_NetworkMapping(t *testing.T) {
	tests := []struct {
		chain    string
		wantPath string
	}{
		{"ethereum", "/networks/eth/tokens/0xabc/pools"},
		{"polygon", "/networks/polygon_pos/tokens/0xabc/pools"},
		{"avalanche", "/networks/avax/tokens/0xabc/pools"},
		{"fantom", "/networks/ftm/tokens/0xabc/pools"},
		{"flow", "/networks/flow/tokens/0xabc/pools"},
	}

	for _, tt := range tests {
		t.Run(tt.chain, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(`{"data": [{"attributes": {"base_token_price_usd": "1.0", "price_change_percentage": {}}}]}`))
			}))
			defer server.Close()

			client := NewGeckoTerminal(WithBaseURL(server.URL))
			if _, err := client.Fetch(context.Background(), "tok1", "0xabc", tt.chain); err != nil {
				t.Fatalf("Fetch: %v", err)
			}

			if gotPath != tt.wantPath {
				t.Errorf("chain %s: expected path %s, got %s", tt.chain, tt.wantPath, gotPath)
			}
		})
	}
}

func TestGeckoTerminal_Fetch_EmptyPools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewGeckoTerminal(WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), "tok1", "0xabc", "ethereum")
	if err == nil {
		t.Fatal("expected error for empty pool list")
	}
	if !IsNoData(err) {
		t.Errorf("expected NoDataError, got %T: %v", err, err)
	}
}

func TestGeckoTerminal_Fetch_AbsentFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": [
				{"attributes": {
					"base_token_price_usd": null,
					"price_change_percentage": {"h1": "abc"}
				}}
			]
		}`))
	}))
	defer server.Close()

	client := NewGeckoTerminal(WithBaseURL(server.URL))

	upd, err := client.Fetch(context.Background(), "tok1", "0xabc", "ethereum")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if upd.Price != nil {
		t.Errorf("expected nil price for null, got %v", *upd.Price)
	}
	if upd.Change1h != nil {
		t.Errorf("expected nil h1 for unparseable string, got %v", *upd.Change1h)
	}
	if upd.Change24h != nil {
		t.Errorf("expected nil h24 for missing field, got %v", *upd.Change24h)
	}
}

func TestGeckoTerminal_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGeckoTerminal(WithBaseURL(server.URL))

	_, err := client.Fetch(context.Background(), "tok1", "0xabc", "ethereum")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if terr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", terr.Status)
	}
	if terr.Source != domain.SourceSecondary {
		t.Errorf("expected secondary source, got %s", terr.Source)
	}
}

func TestPercentOrNil(t *testing.T) {
	val := "1.25"
	bad := "not-a-number"

	if got := percentOrNil(&val); got == nil || *got != 1.25 {
		t.Errorf("percentOrNil(%q) = %v, want 1.25", val, got)
	}
	if got := percentOrNil(&bad); got != nil {
		t.Errorf("percentOrNil(%q) = %v, want nil", bad, *got)
	}
	if got := percentOrNil(nil); got != nil {
		t.Errorf("percentOrNil(nil) = %v, want nil", *got)
	}
}
