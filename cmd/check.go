package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"grimm.is/allowsync/internal/brand"
	"grimm.is/allowsync/internal/config"
)

// RunCheck validates the configuration file and prints the effective settings.
func RunCheck(configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s",
			brand.BinaryName, brand.BinaryName, brand.GetConfigPath())
	}
	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Printf("Configuration valid!\n")
	if verbose {
		Printer.Println()
		return printSummary(os.Stdout, cfg)
	}
	return nil
}

func printSummary(out io.Writer, cfg *config.Config) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	Printer.Fprintf(w, "Region:\t%s\n", cfg.Region)
	Printer.Fprintf(w, "Tag key:\t%s\n", cfg.TagKey)
	Printer.Fprintf(w, "Concurrency:\t%d\n", cfg.Concurrency)
	Printer.Fprintf(w, "Log level:\t%s\n", cfg.LogLevel)
	if err := w.Flush(); err != nil {
		return err
	}
	Printer.Fprintln(out)
	return printSites(out, cfg)
}
