package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/allowsync/internal/i18n"
	"grimm.is/allowsync/internal/reconcile"
	"grimm.is/allowsync/internal/site"
)

// RunReconcile performs one reconciliation for siteName from the CLI.
func RunReconcile(configFile, siteName string, dryRun, jsonOut bool) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, AppOptions{DryRun: dryRun})
	if err != nil {
		return err
	}
	return runOnce(ctx, app, siteName, os.Stdout, jsonOut)
}

func runOnce(ctx context.Context, app *App, siteName string, w io.Writer, jsonOut bool) error {
	report, err := app.Reconciler.Run(ctx, site.ParseName(siteName))
	if report != nil {
		if perr := printReport(w, report, jsonOut); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if app.DryRun != nil {
		revokes, authorizes := app.DryRun.Reset()
		Printer.Fprintf(w, i18n.MsgDryRun, revokes, authorizes)
	}

	switch report.Outcome {
	case reconcile.OutcomePartial:
		return fmt.Errorf("%d group operations failed", report.Failed())
	case reconcile.OutcomeFetchFailed:
		return fmt.Errorf("allowlist fetch failed: %s", report.Error)
	}
	return nil
}

func printReport(w io.Writer, report *reconcile.Report, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if report.Outcome == reconcile.OutcomeUnsupported {
		Printer.Fprintf(w, "%s: %s\n", report.Site, Printer.Sprintf(i18n.MsgUnsupported))
		return nil
	}
	Printer.Fprintf(w, i18n.MsgRunSummary,
		report.Site, report.Outcome, len(report.Groups), report.Entries, report.Failed())
	return nil
}
