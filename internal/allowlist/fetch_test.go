package allowlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/site"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *int) {
	t.Helper()
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	endpoints, err := NewEndpoints(map[site.Site]string{
		site.IdentityProvider: ts.URL + "/okta",
		site.CodeHost:         ts.URL + "/github",
	})
	require.NoError(t, err)
	return NewFetcher(endpoints, logging.Discard()), &hits
}

func TestFetcher_Fetch(t *testing.T) {
	f, hits := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/github", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "allowsync/"))
		fmt.Fprint(w, `{"git":["1.2.3.0/24"]}`)
	})

	raw, err := f.Fetch(context.Background(), site.CodeHost)
	require.NoError(t, err)
	assert.Equal(t, site.CodeHost, raw.Site)
	assert.JSONEq(t, `{"git":["1.2.3.0/24"]}`, string(raw.Body))
	assert.Equal(t, 1, *hits)
}

func TestFetcher_UnsupportedSiteMakesNoRequest(t *testing.T) {
	f, hits := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	raw, err := f.Fetch(context.Background(), site.Site("unknown"))
	assert.Nil(t, raw)
	assert.ErrorIs(t, err, ErrUnsupportedSite)

	var fe *FetchError
	assert.False(t, errors.As(err, &fe), "unsupported site must not be a FetchError")
	assert.Zero(t, *hits)
}

func TestFetcher_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>rate limited</html>")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, hits := newTestFetcher(t, tc.handler)

			_, err := f.Fetch(context.Background(), site.IdentityProvider)
			require.Error(t, err)

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, site.IdentityProvider, fe.Site)
			assert.Equal(t, tc.wantStatus, fe.StatusCode)
			assert.NotErrorIs(t, err, ErrUnsupportedSite)
			assert.Equal(t, 1, *hits, "no retries")
		})
	}
}

func TestFetcher_ContextCanceled(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, site.CodeHost)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEndpoints(t *testing.T) {
	e := DefaultEndpoints()
	u, ok := e.URL(site.IdentityProvider)
	assert.True(t, ok)
	assert.Equal(t, IdentityProviderURL, u)
	assert.Equal(t, []site.Site{site.CodeHost, site.IdentityProvider}, e.Sites())

	_, ok = e.URL(site.Site("gitlab"))
	assert.False(t, ok)

	_, err := NewEndpoints(map[site.Site]string{"gitlab": "https://example.com"})
	assert.Error(t, err)
	_, err = NewEndpoints(map[site.Site]string{site.CodeHost: ""})
	assert.Error(t, err)
}
