package allowlist

import (
	"fmt"
	"sort"

	"grimm.is/allowsync/internal/site"
)

// Pinned provider endpoints.
const (
	IdentityProviderURL = "https://s3.amazonaws.com/okta-ip-ranges/ip_ranges.json"
	CodeHostURL         = "https://api.github.com/meta"
)

// Endpoints is the immutable site -> URL table. Build it once at startup and
// hand it to NewFetcher.
type Endpoints struct {
	urls map[site.Site]string
}

// DefaultEndpoints returns the pinned table.
func DefaultEndpoints() Endpoints {
	e, _ := NewEndpoints(nil)
	return e
}

// NewEndpoints returns the pinned table with the given URLs replacing the
// defaults. Overrides may only name known sites.
func NewEndpoints(overrides map[site.Site]string) (Endpoints, error) {
	urls := map[site.Site]string{
		site.IdentityProvider: IdentityProviderURL,
		site.CodeHost:         CodeHostURL,
	}
	for s, u := range overrides {
		if !s.Valid() {
			return Endpoints{}, fmt.Errorf("endpoint for unknown site %q", s)
		}
		if u == "" {
			return Endpoints{}, fmt.Errorf("endpoint for site %q has empty url", s)
		}
		urls[s] = u
	}
	return Endpoints{urls: urls}, nil
}

// URL returns the endpoint for s.
func (e Endpoints) URL(s site.Site) (string, bool) {
	u, ok := e.urls[s]
	return u, ok
}

// Sites returns the sites in the table, sorted.
func (e Endpoints) Sites() []site.Site {
	out := make([]site.Site, 0, len(e.urls))
	for s := range e.urls {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
