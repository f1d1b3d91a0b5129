package pricesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayanmal1k/Gemchain-PriceFetcher/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second

	// debugBodyLimit caps the raw response bytes handed to the debug hook.
	debugBodyLimit = 2048
)

// httpConfig holds the settings shared by both source clients.
type httpConfig struct {
	baseURL string
	client  *http.Client
	hook    DebugHook
	log     zerolog.Logger
}

// Option configures a source client.
type Option func(*httpConfig)

// WithBaseURL overrides the API base URL (no trailing slash).
func WithBaseURL(url string) Option {
	return func(c *httpConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpConfig) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *httpConfig) {
		c.client = client
	}
}

// WithDebugHook installs a hook invoked once per source call.
func WithDebugHook(hook DebugHook) Option {
	return func(c *httpConfig) {
		c.hook = hook
	}
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *httpConfig) {
		c.log = log
	}
}

func newHTTPConfig(defaultBaseURL string, opts []Option) httpConfig {
	cfg := httpConfig{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// get issues exactly one GET request and returns the raw body. Transport
// failures, non-2xx statuses, and unreadable bodies come back as
// *TransportError. The debug hook, when set, sees every exchange.
func (c *httpConfig) get(ctx context.Context, source domain.PriceSource, token, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(source, token, url, 0, fmt.Errorf("create request: %w", err))
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(source, token, url, 0, fmt.Errorf("http request: %w", err))
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, c.fail(source, token, url, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode/100 != 2 {
		return nil, c.fail(source, token, url, resp.StatusCode, nil)
	}

	c.emit(DebugRecord{
		Token:    token,
		Source:   source,
		URL:      url,
		Response: truncate(body, debugBodyLimit),
		At:       time.Now().UTC(),
	})
	return body, nil
}

// fail builds the TransportError for a failed exchange and mirrors it to the
// debug hook.
func (c *httpConfig) fail(source domain.PriceSource, token, url string, status int, err error) error {
	terr := &TransportError{Source: source, URL: url, Status: status, Err: err}
	c.emit(DebugRecord{
		Token:  token,
		Source: source,
		URL:    url,
		Err:    terr.Error(),
		At:     time.Now().UTC(),
	})
	return terr
}

func (c *httpConfig) emit(rec DebugRecord) {
	if c.hook != nil {
		c.hook(rec)
	}
}

func truncate(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit])
}
