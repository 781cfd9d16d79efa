package allowlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"grimm.is/allowsync/internal/brand"
	"grimm.is/allowsync/internal/clock"
	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/site"
)

// maxResponseBytes caps provider payloads; both are well under 1 MiB today.
const maxResponseBytes = 10 << 20

// Raw is a provider response body, still in the provider's own shape.
type Raw struct {
	Site site.Site
	URL  string
	Body json.RawMessage
}

// Fetcher downloads provider allowlists.
type Fetcher struct {
	endpoints Endpoints
	client    *http.Client
	userAgent string
	clock     clock.Clock
	logger    *logging.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client. The default has no timeout; the
// request context is the only bound.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithClock sets the clock used for timing fetches.
func WithClock(c clock.Clock) FetcherOption {
	return func(f *Fetcher) { f.clock = c }
}

// NewFetcher creates a Fetcher over an endpoint table.
func NewFetcher(endpoints Endpoints, logger *logging.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = logging.Default()
	}
	f := &Fetcher{
		endpoints: endpoints,
		client:    &http.Client{},
		userAgent: brand.UserAgent(brand.Version),
		clock:     clock.Real,
		logger:    logger.WithComponent("fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a single GET for s and returns the JSON body.
// Unknown sites return ErrUnsupportedSite; everything else that goes wrong is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, s site.Site) (*Raw, error) {
	url, ok := f.endpoints.URL(s)
	if !ok {
		return nil, ErrUnsupportedSite
	}

	start := f.clock.Now()
	body, status, err := f.get(ctx, url)
	if err != nil {
		return nil, &FetchError{Site: s, URL: url, StatusCode: status, Err: err}
	}

	if !json.Valid(body) {
		return nil, &FetchError{Site: s, URL: url, Err: errors.New("response is not valid JSON")}
	}

	f.logger.Info("Fetched allowlist",
		"site", s,
		"url", url,
		"bytes", len(body),
		"duration", f.clock.Since(start))

	return &Raw{Site: s, URL: url, Body: json.RawMessage(body)}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxResponseBytes {
		return nil, resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}
	return bytes.TrimSpace(data), resp.StatusCode, nil
}
