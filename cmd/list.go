package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/menu-monitor/internal/app"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the enabled monitors and their pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MONITOR\tURL")
			for _, task := range app.Monitors(cfg.Monitors) {
				u, ok := task.URL()
				if !ok {
					u = "(none)"
				}
				fmt.Fprintf(w, "%s\t%s\n", task.Name(), u)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write monitor list: %w", err)
			}
			return nil
		},
	}
}
