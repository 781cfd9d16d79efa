package allowlist

import (
	"errors"
	"fmt"

	"grimm.is/allowsync/internal/site"
)

// ErrUnsupportedSite is returned for a site with no endpoint. No request is made.
var ErrUnsupportedSite = errors.New(site.UnsupportedOutcome)

// FetchError is a transport, status or payload failure for a supported site.
type FetchError struct {
	Site       site.Site
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s allowlist from %s: status %d", e.Site, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s allowlist from %s: %v", e.Site, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
