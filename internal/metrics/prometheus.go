package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all reconciliation metrics.
type Registry struct {
	Gatherer prometheus.Gatherer

	RunsTotal       *prometheus.CounterVec
	GroupsResolved  *prometheus.GaugeVec
	RevokeTotal     *prometheus.CounterVec
	AuthorizeTotal  *prometheus.CounterVec
	EntriesApplied  *prometheus.GaugeVec
	EntriesDropped  *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	RunDuration     *prometheus.HistogramVec
	LastSuccessTime *prometheus.GaugeVec
}

// Get returns the process-wide registry on the default Prometheus registerer.
func Get() *Registry {
	once.Do(func() {
		registry = New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return registry
}

// NewIsolated returns a registry backed by a fresh prometheus.Registry. Used by tests.
func NewIsolated() *Registry {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	f := promauto.With(reg)
	r := &Registry{Gatherer: gatherer}

	r.RunsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "allowsync_runs_total",
		Help: "Reconciliation runs by site and outcome",
	}, []string{"site", "outcome"})

	r.GroupsResolved = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allowsync_groups_resolved",
		Help: "Security groups tagged for the site on the last run",
	}, []string{"site"})

	r.RevokeTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "allowsync_revoke_total",
		Help: "Per-group purge results",
	}, []string{"site", "result"})

	r.AuthorizeTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "allowsync_authorize_total",
		Help: "Per-group apply results",
	}, []string{"site", "result"})

	r.EntriesApplied = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allowsync_entries_applied",
		Help: "Allow rule entries in the last applied rule set",
	}, []string{"site"})

	r.EntriesDropped = f.NewCounterVec(prometheus.CounterOpts{
		Name: "allowsync_entries_dropped_total",
		Help: "Candidates dropped during normalization",
	}, []string{"site", "reason"})

	r.FetchDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "allowsync_fetch_duration_seconds",
		Help:    "Provider allowlist fetch latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"site"})

	r.RunDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "allowsync_run_duration_seconds",
		Help:    "End-to-end reconciliation latency",
		Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"site"})

	r.LastSuccessTime = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allowsync_last_success_timestamp_seconds",
		Help: "Unix time of the last fully successful run",
	}, []string{"site"})

	return r
}

// ObserveFetch records a fetch latency.
func (r *Registry) ObserveFetch(site string, d time.Duration) {
	if r == nil {
		return
	}
	r.FetchDuration.WithLabelValues(site).Observe(d.Seconds())
}

// RecordGroupResult counts one per-group purge or apply result.
func (r *Registry) RecordGroupResult(vec *prometheus.CounterVec, site, result string) {
	if r == nil || vec == nil {
		return
	}
	vec.WithLabelValues(site, result).Inc()
}

// RecordRun records the end of a run.
func (r *Registry) RecordRun(site, outcome string, d time.Duration, success bool, at time.Time) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(site, outcome).Inc()
	r.RunDuration.WithLabelValues(site).Observe(d.Seconds())
	if success {
		r.LastSuccessTime.WithLabelValues(site).Set(float64(at.Unix()))
	}
}
