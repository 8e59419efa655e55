package stats

import (
	"github.com/shopspring/decimal"
)

// SeriesPoint is one day of the equity curve.
type SeriesPoint struct {
	Date          string          `json:"date"`
	DailyPnL      decimal.Decimal `json:"daily_pnl"`
	CumulativePnL decimal.Decimal `json:"cumulative_pnl"`
	Equity        decimal.Decimal `json:"equity"`
}

// BuildSeries walks the bucket days in ascending order and accumulates PnL.
// Equity is baseline plus cumulative PnL. When there are no buckets the
// series covers every day of month with zero values.
func BuildSeries(buckets Buckets, month Month, baseline decimal.Decimal) []SeriesPoint {
	keys := buckets.Keys()
	if len(keys) == 0 {
		keys = make([]string, 0, month.Days())
		for day := 1; day <= month.Days(); day++ {
			keys = append(keys, month.DayKey(day))
		}
	}

	series := make([]SeriesPoint, 0, len(keys))
	cumulative := decimal.Zero
	for _, key := range keys {
		daily := buckets.Get(key)
		cumulative = cumulative.Add(daily)
		series = append(series, SeriesPoint{
			Date:          key,
			DailyPnL:      daily,
			CumulativePnL: cumulative,
			Equity:        baseline.Add(cumulative),
		})
	}
	return series
}
