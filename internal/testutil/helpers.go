package testutil

import (
	"os"
	"testing"
)

// RequireAWS skips the test unless ALLOWSYNC_AWS_TEST is set. Tests behind it
// talk to a real account with the ambient credential chain and must only
// issue read calls.
func RequireAWS(t *testing.T) {
	t.Helper()
	if os.Getenv("ALLOWSYNC_AWS_TEST") == "" {
		t.Skip("Skipping test: requires ALLOWSYNC_AWS_TEST environment")
	}
}

// RequireNetwork skips the test unless ALLOWSYNC_NET_TEST is set. Used by
// tests that fetch the live provider endpoints.
func RequireNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("ALLOWSYNC_NET_TEST") == "" {
		t.Skip("Skipping test: requires ALLOWSYNC_NET_TEST environment")
	}
}
