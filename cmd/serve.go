package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/allowsync/internal/firewall"
	"grimm.is/allowsync/internal/i18n"
	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/ratelimit"
	"grimm.is/allowsync/internal/reconcile"
	"grimm.is/allowsync/internal/site"
)

const maxEventBytes = 64 << 10

// RunServe starts the webhook trigger and blocks until SIGINT/SIGTERM.
func RunServe(configFile, listen string, dryRun bool) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	app, err := NewApp(context.Background(), cfg, AppOptions{DryRun: dryRun})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           NewWebhookServer(app).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.Logger.Info("Starting webhook server", "listen", listen, "dry_run", dryRun)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("Webhook server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Logger.Info("Shutting down webhook server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// WebhookServer runs one reconciliation per POST. Runs are serialized so two
// triggers never purge and apply the same groups at once.
type WebhookServer struct {
	app     *App
	mu      sync.Mutex
	limiter *ratelimit.Limiter
	logger  *logging.Logger
}

// NewWebhookServer wraps app. Each site may be triggered
// app.Config.TriggerLimit times per minute.
func NewWebhookServer(app *App) *WebhookServer {
	return &WebhookServer{
		app:     app,
		limiter: ratelimit.NewLimiter(app.Config.TriggerLimit, time.Minute, nil),
		logger:  app.Logger.WithComponent("webhook"),
	}
}

// Handler returns the routes.
func (s *WebhookServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /reconcile", i18n.Middleware(http.HandlerFunc(s.handleReconcile)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.app.Metrics.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}

type webhookResponse struct {
	*reconcile.Report
	Message string `json:"message"`
}

func (s *WebhookServer) handleReconcile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	req, err := site.Decode(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, unsupported := req.(site.UnsupportedRequest); !unsupported {
		key := req.Site().String()
		if !s.limiter.Allow(key) {
			retry := s.limiter.RetryAfter(key)
			s.logger.Warn("Trigger rate limited", "site", key, "retry_after", retry)
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			http.Error(w, "too many triggers for site "+key, http.StatusTooManyRequests)
			return
		}
	}

	// A caller disconnect after the purge must not cancel fetch and apply.
	ctx := context.WithoutCancel(r.Context())

	s.mu.Lock()
	report, err := s.app.Reconciler.Run(ctx, req)
	if s.app.DryRun != nil {
		revokes, authorizes := s.app.DryRun.Reset()
		s.logger.Info("Dry run recorded calls", "revokes", revokes, "authorizes", authorizes)
	}
	s.mu.Unlock()

	status := http.StatusOK
	var derr *firewall.DiscoveryError
	switch {
	case errors.As(err, &derr):
		status = http.StatusBadGateway
	case err != nil:
		status = http.StatusInternalServerError
	case report.Outcome == reconcile.OutcomeUnsupported:
		status = http.StatusUnprocessableEntity
	case report.Outcome == reconcile.OutcomeFetchFailed:
		status = http.StatusBadGateway
	case report.Outcome == reconcile.OutcomePartial:
		status = http.StatusMultiStatus
	}

	p := i18n.GetPrinter(r.Context())
	resp := webhookResponse{Report: report}
	if report != nil {
		if report.Outcome == reconcile.OutcomeUnsupported {
			resp.Message = p.Sprintf(i18n.MsgUnsupported)
		} else {
			resp.Message = p.Sprintf(i18n.MsgRunSummary,
				report.Site, report.Outcome, len(report.Groups), report.Entries, report.Failed())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}
