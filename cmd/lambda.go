package cmd

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"grimm.is/allowsync/internal/reconcile"
	"grimm.is/allowsync/internal/site"
)

// RunLambda hands control to the Lambda runtime. It only returns on setup
// errors.
func RunLambda(configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	app, err := NewApp(context.Background(), cfg, AppOptions{JSONLog: true})
	if err != nil {
		return err
	}
	lambda.Start(LambdaHandler(app))
	return nil
}

// LambdaHandler adapts the reconciler to an invocation event of the form
// {"site": "okta"}.
func LambdaHandler(app *App) func(context.Context, site.Event) (*reconcile.Report, error) {
	return func(ctx context.Context, ev site.Event) (*reconcile.Report, error) {
		return app.Reconciler.Run(ctx, site.ParseEvent(ev))
	}
}
