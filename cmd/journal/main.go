package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "journal",
		Short:         "Trading journal command line",
		Long:          "Record futures trades and inspect journal statistics from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "./configs", "Directory holding config.yml")
	cmd.PersistentFlags().StringVar(&opts.email, "email", "", "Account email (default: $JOURNAL_EMAIL)")
	cmd.PersistentFlags().StringVar(&opts.password, "password", "", "Account password (default: $JOURNAL_PASSWORD)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logger.level")

	cmd.AddCommand(statsCmd(opts))
	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(tradesCmd(opts))
	return cmd
}
