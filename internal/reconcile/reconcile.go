// Package reconcile sequences one allowlist reconciliation:
//
//	ParseRequest → ResolveAndPurge → FetchAllowlist → Apply → Done
//
// Each step is fully awaited before the next starts. Unsupported sites stop
// before any EC2 call. A fetch failure after the purge skips Apply and leaves
// the purged groups without automated rules until the next successful run.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/allowsync/internal/allowlist"
	"grimm.is/allowsync/internal/clock"
	"grimm.is/allowsync/internal/firewall"
	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/metrics"
	"grimm.is/allowsync/internal/site"
)

// Outcome summarizes a run.
type Outcome string

const (
	OutcomeReconciled  Outcome = "reconciled"
	OutcomePartial     Outcome = "partial"
	OutcomeNoGroups    Outcome = "no groups"
	OutcomeUnsupported Outcome = site.UnsupportedOutcome
	OutcomeFetchFailed Outcome = "fetch failed"
	OutcomeDiscovery   Outcome = "discovery failed"
)

// Report is returned to the caller after every run.
type Report struct {
	RunID     string                 `json:"run_id"`
	Site      string                 `json:"site"`
	Outcome   Outcome                `json:"outcome"`
	Groups    []string               `json:"groups,omitempty"`
	Purged    []firewall.GroupResult `json:"purged,omitempty"`
	Applied   []firewall.GroupResult `json:"applied,omitempty"`
	Entries   int                    `json:"entries"`
	Invalid   int                    `json:"invalid,omitempty"`
	Truncated int                    `json:"truncated,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Duration  time.Duration          `json:"duration_ns"`
}

// Failed counts per-group failures across purge and apply.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Purged {
		if res.Action == firewall.ActionFailed {
			n++
		}
	}
	for _, res := range r.Applied {
		if res.Action == firewall.ActionFailed {
			n++
		}
	}
	return n
}

// Fetcher retrieves a provider payload.
type Fetcher interface {
	Fetch(ctx context.Context, s site.Site) (*allowlist.Raw, error)
}

// Reconciler runs one site per call. It holds no state between runs.
type Reconciler struct {
	resolver *firewall.Resolver
	purger   *firewall.Purger
	applier  *firewall.Applier
	fetcher  Fetcher
	metrics  *metrics.Registry
	clock    clock.Clock
	logger   *logging.Logger
}

// Deps are the collaborators of a Reconciler.
type Deps struct {
	EC2         firewall.EC2API
	Fetcher     Fetcher
	TagKey      string
	Concurrency int
	Metrics     *metrics.Registry
	Clock       clock.Clock
	Logger      *logging.Logger
}

// New wires a Reconciler.
func New(d Deps) *Reconciler {
	logger := d.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		resolver: firewall.NewResolver(d.EC2, d.TagKey, logger),
		purger:   firewall.NewPurger(d.EC2, d.Concurrency, logger),
		applier:  firewall.NewApplier(d.EC2, d.Concurrency, logger),
		fetcher:  d.Fetcher,
		metrics:  d.Metrics,
		clock:    clock.OrReal(d.Clock),
		logger:   logger.WithComponent("reconcile"),
	}
}

// Run reconciles the groups tagged for req's site. Only a discovery failure
// is returned as an error; every other outcome is in the Report.
func (r *Reconciler) Run(ctx context.Context, req site.Request) (*Report, error) {
	start := r.clock.Now()
	report := &Report{RunID: uuid.NewString()}
	log := r.logger.With("run_id", report.RunID)

	var s site.Site
	switch q := req.(type) {
	case site.IdentityProviderRequest, site.CodeHostRequest:
		s = q.Site()
	case site.UnsupportedRequest:
		report.Site = q.Raw
		report.Outcome = OutcomeUnsupported
		log.Warn("Site not supported, nothing modified", "site", q.Raw)
		return r.finish(report, start), nil
	default:
		report.Outcome = OutcomeUnsupported
		log.Warn("Unrecognized request, nothing modified")
		return r.finish(report, start), nil
	}
	report.Site = s.String()
	log = log.With("site", s)

	// ResolveAndPurge
	log.Info("Removing existing automated rules")
	groups, err := r.resolver.Resolve(ctx, s.String())
	if err != nil {
		report.Outcome = OutcomeDiscovery
		report.Error = err.Error()
		log.Error("Discovery failed, no rules modified", "error", err)
		r.finish(report, start)
		return report, err
	}
	for _, g := range groups {
		report.Groups = append(report.Groups, g.ID)
	}
	if r.metrics != nil {
		r.metrics.GroupsResolved.WithLabelValues(report.Site).Set(float64(len(groups)))
	}
	if len(groups) == 0 {
		report.Outcome = OutcomeNoGroups
		log.Info("No security groups tagged for site")
		return r.finish(report, start), nil
	}

	groups, report.Purged = r.purger.Purge(ctx, groups)
	for _, res := range report.Purged {
		r.metrics.RecordGroupResult(r.metricVec(true), report.Site, string(res.Action))
	}

	// FetchAllowlist
	log.Info("Adding allowlisted ranges")
	fetchStart := r.clock.Now()
	raw, err := r.fetcher.Fetch(ctx, s)
	r.metrics.ObserveFetch(report.Site, r.clock.Since(fetchStart))
	var result *allowlist.Result
	if err == nil {
		result, err = allowlist.Normalize(raw)
	}
	if err != nil {
		report.Error = err.Error()
		if errors.Is(err, allowlist.ErrUnsupportedSite) {
			report.Outcome = OutcomeUnsupported
			log.Warn("No endpoint for site, skipping apply", "error", err)
		} else {
			report.Outcome = OutcomeFetchFailed
			log.Error("Allowlist unavailable, purged groups left without automated rules",
				"error", err, "groups", len(groups))
		}
		return r.finish(report, start), nil
	}

	report.Entries = len(result.Entries)
	report.Invalid = len(result.Invalid)
	report.Truncated = result.Truncated
	if report.Invalid > 0 {
		log.Warn("Dropped candidates that are not CIDR prefixes", "count", report.Invalid, "first", result.Invalid[0])
	}
	if report.Truncated > 0 {
		log.Warn("Rule set truncated to permission block limit",
			"kept", report.Entries, "dropped", report.Truncated)
	}
	if r.metrics != nil {
		r.metrics.EntriesApplied.WithLabelValues(report.Site).Set(float64(report.Entries))
		r.metrics.EntriesDropped.WithLabelValues(report.Site, "invalid").Add(float64(report.Invalid))
		r.metrics.EntriesDropped.WithLabelValues(report.Site, "truncated").Add(float64(report.Truncated))
	}

	// Apply
	report.Applied = r.applier.Apply(ctx, groups, result.Entries)
	for _, res := range report.Applied {
		r.metrics.RecordGroupResult(r.metricVec(false), report.Site, string(res.Action))
	}

	report.Outcome = OutcomeReconciled
	if report.Failed() > 0 {
		report.Outcome = OutcomePartial
	}
	log.Info("Reconciliation finished",
		"outcome", report.Outcome,
		"groups", len(groups),
		"entries", report.Entries,
		"failed", report.Failed())
	return r.finish(report, start), nil
}

func (r *Reconciler) metricVec(purge bool) *prometheus.CounterVec {
	if r.metrics == nil {
		return nil
	}
	if purge {
		return r.metrics.RevokeTotal
	}
	return r.metrics.AuthorizeTotal
}

func (r *Reconciler) finish(report *Report, start time.Time) *Report {
	report.Duration = r.clock.Since(start)
	success := report.Outcome == OutcomeReconciled || report.Outcome == OutcomeNoGroups
	r.metrics.RecordRun(report.Site, string(report.Outcome), report.Duration, success, r.clock.Now())
	return report
}
