package main

import (
	"flag"
	"os"

	"grimm.is/allowsync/cmd"
	"grimm.is/allowsync/internal/brand"
	"grimm.is/allowsync/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	// The Lambda runtime starts the bootstrap binary without arguments.
	if len(os.Args) < 2 && os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		os.Args = append(os.Args, "lambda")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runFlags := flag.NewFlagSet("run", flag.ExitOnError)
		siteName := runFlags.String("site", "", "Site to reconcile (okta, github)")
		runFlags.StringVar(siteName, "s", "", "Site (short)")
		configFile := runFlags.String("config", "", "Configuration file (default "+brand.GetConfigPath()+")")
		runFlags.StringVar(configFile, "c", "", "Configuration file (short)")
		dryRun := runFlags.Bool("dry-run", false, "Dry run - record revokes and authorizes without sending them")
		runFlags.BoolVar(dryRun, "n", false, "Dry run (short)")
		jsonOut := runFlags.Bool("json", false, "Print the report as JSON")
		runFlags.Parse(os.Args[2:])

		if *siteName == "" && runFlags.NArg() > 0 {
			*siteName = runFlags.Arg(0)
		}

		if err := cmd.RunReconcile(*configFile, *siteName, *dryRun, *jsonOut); err != nil {
			printer.Fprintf(os.Stderr, "Run failed: %v\n", err)
			os.Exit(1)
		}

	case "lambda":
		lambdaFlags := flag.NewFlagSet("lambda", flag.ExitOnError)
		configFile := lambdaFlags.String("config", "", "Configuration file")
		lambdaFlags.Parse(os.Args[2:])

		if err := cmd.RunLambda(*configFile); err != nil {
			printer.Fprintf(os.Stderr, "Lambda startup failed: %v\n", err)
			os.Exit(1)
		}

	case "serve":
		serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
		listen := serveFlags.String("listen", ":8080", "Listen address")
		serveFlags.StringVar(listen, "l", ":8080", "Listen address (short)")
		configFile := serveFlags.String("config", "", "Configuration file")
		serveFlags.StringVar(configFile, "c", "", "Configuration file (short)")
		dryRun := serveFlags.Bool("dry-run", false, "Dry run - record revokes and authorizes without sending them")
		serveFlags.BoolVar(dryRun, "n", false, "Dry run (short)")
		serveFlags.Parse(os.Args[2:])

		if err := cmd.RunServe(*configFile, *listen, *dryRun); err != nil {
			printer.Fprintf(os.Stderr, "Serve failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.Bool("verbose", false, "Verbose output")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(os.Args[2:])

		configFile := brand.GetConfigPath()
		if len(checkFlags.Args()) > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(configFile, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "sites":
		sitesFlags := flag.NewFlagSet("sites", flag.ExitOnError)
		configFile := sitesFlags.String("config", "", "Configuration file")
		sitesFlags.Parse(os.Args[2:])

		if err := cmd.RunSites(*configFile); err != nil {
			printer.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version", "-V", "--version":
		cmd.RunVersion(os.Stdout)

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  run       Reconcile the security groups tagged for one site
            Options: --site (-s) <site>, --config (-c) <file>, --dry-run (-n), --json
  lambda    Run as an AWS Lambda handler ({"site": "okta"})
  serve     Webhook trigger (POST /reconcile, GET /metrics, GET /healthz)
            Options: --listen (-l) <addr>, --config (-c) <file>, --dry-run (-n)
  check     Validate configuration file
            Options: --verbose (-v)
  sites     List supported sites and their endpoints
  version   Show version

Examples:
  %s run --site okta                # Reconcile okta-tagged groups
  %s run -s github --dry-run        # Show what would change
  %s serve --listen :8080
  %s check -v %s
`,
		brand.Name, brand.Description,
		brand.LowerName,
		brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName, brand.GetConfigPath())
}
