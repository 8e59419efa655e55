package main

import (
	"github.com/spf13/cobra"

	"trading-journal-go/internal/stats"
)

func statsCmd(opts *globalOptions) *cobra.Command {
	var (
		page    int
		month   string
		history bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard of one page of trades as YAML",
		Long: `Print the summary, equity series and calendar heat map for one page
of trades. The figures only cover that page; use --history for a summary
of every trade.

Example:
  journal stats --page 2 --month 2025-03
  journal stats --history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.log.Sync()

			if history {
				summary, err := env.app.Journal.HistorySummary(cmd.Context(), env.userID)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), summary)
			}

			selected := env.app.Journal.CurrentMonth()
			if month != "" {
				if selected, err = stats.ParseMonth(month); err != nil {
					return err
				}
			}
			dash, err := env.app.Journal.Dashboard(cmd.Context(), env.userID, page, selected)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), dash)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page of trades to aggregate")
	cmd.Flags().StringVar(&month, "month", "", "Calendar month as YYYY-MM (default: current month)")
	cmd.Flags().BoolVar(&history, "history", false, "Summarize the whole trade history instead")
	return cmd
}
