package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RecordRun(t *testing.T) {
	r := NewIsolated()
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	r.RecordRun("okta", "reconciled", 2*time.Second, true, at)
	r.RecordRun("okta", "fetch failed", time.Second, false, at.Add(time.Hour))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("okta", "reconciled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("okta", "fetch failed")))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.LastSuccessTime.WithLabelValues("okta")))
}

func TestRegistry_GroupResults(t *testing.T) {
	r := NewIsolated()
	r.RecordGroupResult(r.RevokeTotal, "github", "revoked")
	r.RecordGroupResult(r.RevokeTotal, "github", "revoked")
	r.RecordGroupResult(r.AuthorizeTotal, "github", "failed")
	r.ObserveFetch("github", 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RevokeTotal.WithLabelValues("github", "revoked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AuthorizeTotal.WithLabelValues("github", "failed")))

	n, err := testutil.GatherAndCount(r.Gatherer, "allowsync_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveFetch("okta", time.Second)
		r.RecordGroupResult(nil, "okta", "revoked")
		r.RecordRun("okta", "reconciled", time.Second, true, time.Now())
	})
}

func TestGet_Singleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
