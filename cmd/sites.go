package cmd

import (
	"io"
	"os"
	"text/tabwriter"

	"grimm.is/allowsync/internal/allowlist"
	"grimm.is/allowsync/internal/config"
)

// RunSites lists the supported sites and the endpoint each one fetches.
func RunSites(configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	return printSites(os.Stdout, cfg)
}

func printSites(out io.Writer, cfg *config.Config) error {
	endpoints, err := allowlist.NewEndpoints(cfg.EndpointOverrides())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	Printer.Fprintln(w, "SITE\tTAG\tMARKER\tENDPOINT")
	for _, s := range endpoints.Sites() {
		url, _ := endpoints.URL(s)
		marker, _ := allowlist.Marker(s)
		Printer.Fprintf(w, "%s\t%s=%s\t%s\t%s\n", s, cfg.TagKey, s, marker, url)
	}
	return w.Flush()
}
