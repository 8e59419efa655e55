// Package stats derives journal statistics from a list of trades.
// Every function is pure: the caller chooses which trades go in.
package stats

import (
	"github.com/shopspring/decimal"

	"trading-journal-go/internal/models"
)

// HighLeverageThreshold is the leverage above which a trade counts as high leverage.
var HighLeverageThreshold = decimal.NewFromInt(5)

var hundred = decimal.NewFromInt(100)

// Summary holds the aggregate counters shown on the dashboard cards.
type Summary struct {
	TotalTrades        int             `json:"total_trades"`
	Wins               int             `json:"wins"`
	Losses             int             `json:"losses"`
	WinRate            decimal.Decimal `json:"win_rate"`
	TotalPnL           decimal.Decimal `json:"total_pnl"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	AvgLeverage        decimal.Decimal `json:"avg_leverage"`
	MaxLeverage        decimal.Decimal `json:"max_leverage"`
	HighLeverageTrades int             `json:"high_leverage_trades"`
	LongTrades         int             `json:"long_trades"`
	ShortTrades        int             `json:"short_trades"`
	LongWinRate        decimal.Decimal `json:"long_win_rate"`
	ShortWinRate       decimal.Decimal `json:"short_win_rate"`
	CrossTrades        int             `json:"cross_trades"`
	IsolatedTrades     int             `json:"isolated_trades"`
	CrossWinRate       decimal.Decimal `json:"cross_win_rate"`
}

// Summarize aggregates trades. Wins are counted from the stored is_win flag,
// not from the PnL sign, so a record keeps the outcome it was written with.
func Summarize(trades []models.Trade) Summary {
	s := Summary{
		TotalTrades: len(trades),
		WinRate:     decimal.Zero,
		TotalPnL:    decimal.Zero,
		TotalVolume: decimal.Zero,
		AvgLeverage: decimal.Zero,
		MaxLeverage: decimal.Zero,
	}

	leverageSum := decimal.Zero
	var longWins, shortWins, crossWins int
	for _, t := range trades {
		if t.IsWin {
			s.Wins++
		}
		s.TotalPnL = s.TotalPnL.Add(t.RealizedPnL)
		s.TotalVolume = s.TotalVolume.Add(t.Notional())

		leverageSum = leverageSum.Add(t.Leverage)
		if t.Leverage.GreaterThan(s.MaxLeverage) {
			s.MaxLeverage = t.Leverage
		}
		if t.Leverage.GreaterThan(HighLeverageThreshold) {
			s.HighLeverageTrades++
		}

		switch t.Direction {
		case models.DirectionShort:
			s.ShortTrades++
			if t.IsWin {
				shortWins++
			}
		default:
			s.LongTrades++
			if t.IsWin {
				longWins++
			}
		}

		switch t.MarginMode {
		case models.MarginIsolated:
			s.IsolatedTrades++
		default:
			s.CrossTrades++
			if t.IsWin {
				crossWins++
			}
		}
	}

	s.Losses = s.TotalTrades - s.Wins
	s.WinRate = percentage(s.Wins, s.TotalTrades)
	s.LongWinRate = percentage(longWins, s.LongTrades)
	s.ShortWinRate = percentage(shortWins, s.ShortTrades)
	s.CrossWinRate = percentage(crossWins, s.CrossTrades)
	if s.TotalTrades > 0 {
		s.AvgLeverage = leverageSum.Div(decimal.NewFromInt(int64(s.TotalTrades))).Round(2)
	}
	return s
}

// percentage returns part/total*100 rounded to two decimals, or zero for an empty total.
func percentage(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
}
