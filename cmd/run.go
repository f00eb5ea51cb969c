package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/app"
	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

func newRunCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every enabled monitor once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report := a.RunOnce(ctx)
				a.Logger().Info("run finished",
					zap.String("run_id", report.RunID),
					zap.Int("alerts", report.Alerts()),
					zap.Int("reported_errors", report.Count(monitor.OutcomeReported)),
					zap.Int("failed", report.Count(monitor.OutcomeFailed)),
				)
				if strict && report.Failed() {
					return fmt.Errorf("%d monitor(s) failed unexpectedly", report.Count(monitor.OutcomeFailed))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a monitor fails unexpectedly (transport error or panic)")
	return cmd
}
