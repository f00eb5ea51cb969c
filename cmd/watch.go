package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/menu-monitor/internal/app"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the monitors every watch.interval and serve health, metrics and run reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Watch(ctx)
			})
		},
	}
}
