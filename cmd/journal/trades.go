package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trading-journal-go/internal/models"
)

func tradesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List and record trades",
	}
	cmd.AddCommand(tradesListCmd(opts))
	cmd.AddCommand(tradesAddCmd(opts))
	return cmd
}

func tradesListCmd(opts *globalOptions) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of trades, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.log.Sync()

			p, err := env.app.Journal.LoadPage(cmd.Context(), env.userID, page)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func tradesAddCmd(opts *globalOptions) *cobra.Command {
	var in struct {
		futures, marginMode, direction                     string
		entry, closePrice, liquidation, leverage, qty, pnl string
		openTime, closeTime                                string
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a completed trade",
		Long: `Record a completed futures trade. Open and close times default to now.

Example:
  journal trades add --futures BTCUSDT --entry 60000 --close 61000 \
    --leverage 10 --quantity 0.01 --pnl 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.log.Sync()

			result, err := env.app.Journal.AddTrade(cmd.Context(), env.userID, models.TradeInput{
				Futures:          models.InputValue(in.futures),
				MarginMode:       models.InputValue(in.marginMode),
				EntryPrice:       models.InputValue(in.entry),
				ClosePrice:       models.InputValue(in.closePrice),
				LiquidationPrice: models.InputValue(in.liquidation),
				TradeDirection:   models.InputValue(in.direction),
				Leverage:         models.InputValue(in.leverage),
				Quantity:         models.InputValue(in.qty),
				RealizedPnL:      models.InputValue(in.pnl),
				OpenTime:         models.InputValue(in.openTime),
				CloseTime:        models.InputValue(in.closeTime),
			})
			if err != nil {
				return err
			}
			if result.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Warning)
			}
			return printYAML(cmd.OutOrStdout(), result.Trade)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.futures, "futures", "", "Instrument symbol, e.g. BTCUSDT")
	f.StringVar(&in.marginMode, "margin", "cross", "Margin mode: cross or isolated")
	f.StringVar(&in.direction, "direction", "long", "Direction: long or short")
	f.StringVar(&in.entry, "entry", "", "Entry price")
	f.StringVar(&in.closePrice, "close", "", "Close price")
	f.StringVar(&in.liquidation, "liquidation", "", "Liquidation price (optional)")
	f.StringVar(&in.leverage, "leverage", "1", "Leverage")
	f.StringVar(&in.qty, "quantity", "", "Position quantity")
	f.StringVar(&in.pnl, "pnl", "", "Realized PnL")
	f.StringVar(&in.openTime, "open-time", "", "Open time, YYYY-MM-DD HH:MM:SS")
	f.StringVar(&in.closeTime, "close-time", "", "Close time, YYYY-MM-DD HH:MM:SS")
	return cmd
}
