package cmd

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"grimm.is/allowsync/internal/allowlist"
	"grimm.is/allowsync/internal/brand"
	"grimm.is/allowsync/internal/config"
	"grimm.is/allowsync/internal/firewall"
	"grimm.is/allowsync/internal/i18n"
	"grimm.is/allowsync/internal/logging"
	"grimm.is/allowsync/internal/metrics"
	"grimm.is/allowsync/internal/reconcile"
)

// Printer is the global message printer for the CLI
var Printer = i18n.NewCLIPrinter()

// App is everything one process needs to reconcile.
type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	Metrics    *metrics.Registry
	Endpoints  allowlist.Endpoints
	Reconciler *reconcile.Reconciler

	// DryRun is set when mutations are recorded instead of sent.
	DryRun *firewall.DryRunEC2
}

// AppOptions adjust NewApp. Zero values use the real dependencies.
type AppOptions struct {
	DryRun  bool
	EC2     firewall.EC2API
	Metrics *metrics.Registry
	JSONLog bool
}

// NewApp builds the logger, EC2 client, fetcher and reconciler from cfg.
func NewApp(ctx context.Context, cfg *config.Config, opts AppOptions) (*App, error) {
	logger := newLogger(cfg, opts.JSONLog)

	endpoints, err := allowlist.NewEndpoints(cfg.EndpointOverrides())
	if err != nil {
		return nil, err
	}

	api := opts.EC2
	if api == nil {
		client, err := NewEC2Client(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		api = client
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   opts.Metrics,
		Endpoints: endpoints,
	}
	if app.Metrics == nil {
		app.Metrics = metrics.Get()
	}
	if opts.DryRun {
		app.DryRun = firewall.NewDryRunEC2(api, logger)
		api = app.DryRun
	}

	app.Reconciler = reconcile.New(reconcile.Deps{
		EC2:         api,
		Fetcher:     allowlist.NewFetcher(endpoints, logger),
		TagKey:      cfg.TagKey,
		Concurrency: cfg.Concurrency,
		Metrics:     app.Metrics,
		Logger:      logger,
	})
	return app, nil
}

// NewEC2Client loads the default AWS credential chain pinned to region.
func NewEC2Client(ctx context.Context, region string) (*ec2.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithAppID(brand.LowerName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return ec2.NewFromConfig(awsCfg), nil
}

func newLogger(cfg *config.Config, forceJSON bool) *logging.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	logger := logging.New(logging.Config{
		Level:  level,
		Output: os.Stderr,
		JSON:   cfg.LogJSON || forceJSON,
	})
	logging.SetDefault(logger)
	return logger
}

// loadConfig reads configFile, falling back to the brand default path.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile == "" {
		configFile = brand.GetConfigPath()
	}
	return config.Load(configFile)
}
