package stats

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal-go/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func trade(pnl, leverage string, dir models.Direction, mode models.MarginMode, closeTime string) models.Trade {
	p := d(pnl)
	return models.Trade{
		TradePayload: models.TradePayload{
			Symbol:      "BTCUSDT",
			MarginMode:  mode,
			EntryPrice:  d("100"),
			ClosePrice:  d("110"),
			Direction:   dir,
			Leverage:    d(leverage),
			Quantity:    d("2"),
			RealizedPnL: p,
			CloseTime:   closeTime,
			IsWin:       !p.IsNegative(),
		},
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSummarize(t *testing.T) {
	t.Run("Empty list", func(t *testing.T) {
		s := Summarize(nil)
		assert.Equal(t, 0, s.TotalTrades)
		assert.True(t, s.WinRate.IsZero())
		assert.True(t, s.TotalPnL.IsZero())
		assert.True(t, s.TotalVolume.IsZero())
		assert.True(t, s.AvgLeverage.IsZero())
	})

	t.Run("Mixed trades", func(t *testing.T) {
		trades := []models.Trade{
			trade("10", "10", models.DirectionLong, models.MarginCross, ""),
			trade("-4.5", "2", models.DirectionShort, models.MarginIsolated, ""),
			trade("0", "3", models.DirectionLong, models.MarginCross, ""),
		}
		s := Summarize(trades)

		assert.Equal(t, 3, s.TotalTrades)
		assert.Equal(t, 2, s.Wins)
		assert.Equal(t, 1, s.Losses)
		assert.Equal(t, "66.67", s.WinRate.String())
		assert.Equal(t, "5.5", s.TotalPnL.String())
		assert.Equal(t, "600", s.TotalVolume.String())
		assert.Equal(t, "5", s.AvgLeverage.String())
		assert.Equal(t, "10", s.MaxLeverage.String())
		assert.Equal(t, 1, s.HighLeverageTrades)
		assert.Equal(t, 2, s.LongTrades)
		assert.Equal(t, 1, s.ShortTrades)
		assert.Equal(t, "100", s.LongWinRate.String())
		assert.Equal(t, "0", s.ShortWinRate.String())
		assert.Equal(t, 2, s.CrossTrades)
		assert.Equal(t, 1, s.IsolatedTrades)
	})

	t.Run("Stored flag wins over PnL sign", func(t *testing.T) {
		tr := trade("-1", "1", models.DirectionLong, models.MarginCross, "")
		tr.IsWin = true
		assert.Equal(t, 1, Summarize([]models.Trade{tr}).Wins)
	})
}

func TestWinRateRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(30)
		trades := make([]models.Trade, n)
		wins := 0
		for j := range trades {
			pnl := fmt.Sprintf("%d", rng.Intn(200)-100)
			trades[j] = trade(pnl, "1", models.DirectionLong, models.MarginCross, "")
			if trades[j].IsWin {
				wins++
			}
		}
		s := Summarize(trades)
		assert.True(t, s.WinRate.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, s.WinRate.LessThanOrEqual(decimal.NewFromInt(100)))
		assert.Equal(t, wins, s.Wins)
		assert.True(t, percentage(wins, n).Equal(s.WinRate))
	}
}

func TestDailyBuckets(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	testCases := []struct {
		name      string
		closeTime string
		createdAt time.Time
		expected  string
	}{
		{name: "Form layout", closeTime: "2025-03-05 23:30:00", expected: "2025-03-05"},
		{name: "Datetime local input", closeTime: "2025-03-05T10:15", expected: "2025-03-05"},
		{name: "RFC3339 shifts into location", closeTime: "2025-03-05T20:00:00Z", expected: "2025-03-06"},
		{name: "Date only", closeTime: "2025-03-07", expected: "2025-03-07"},
		{name: "Unparseable falls back to creation", closeTime: "yesterday",
			createdAt: time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC), expected: "2025-03-10"},
		{name: "Empty falls back to creation", closeTime: "",
			createdAt: time.Date(2025, 3, 9, 1, 0, 0, 0, time.UTC), expected: "2025-03-09"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := trade("3", "1", models.DirectionLong, models.MarginCross, tc.closeTime)
			if !tc.createdAt.IsZero() {
				tr.CreatedAt = tc.createdAt
			}
			buckets := DailyBuckets([]models.Trade{tr}, loc)
			assert.Equal(t, []string{tc.expected}, buckets.Keys())
		})
	}
}

func TestBucketConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		trades := make([]models.Trade, rng.Intn(40))
		total := decimal.Zero
		for j := range trades {
			pnl := fmt.Sprintf("%d.%02d", rng.Intn(400)-200, rng.Intn(100))
			closeTime := fmt.Sprintf("2025-%02d-%02d 10:00:00", rng.Intn(12)+1, rng.Intn(28)+1)
			if rng.Intn(5) == 0 {
				closeTime = "n/a"
			}
			trades[j] = trade(pnl, "1", models.DirectionLong, models.MarginCross, closeTime)
			total = total.Add(trades[j].RealizedPnL)
		}

		buckets := DailyBuckets(trades, time.UTC)
		assert.True(t, total.Equal(buckets.Total()), "bucket sum %s != pnl sum %s", buckets.Total(), total)

		baseline := decimal.NewFromInt(int64(rng.Intn(1000)))
		series := BuildSeries(buckets, Month{Year: 2025, Month: time.March}, baseline)
		prefix := decimal.Zero
		for _, p := range series {
			prefix = prefix.Add(p.DailyPnL)
			assert.True(t, prefix.Equal(p.CumulativePnL))
			assert.True(t, baseline.Add(p.CumulativePnL).Equal(p.Equity))
		}
	}
}

func TestBuildSeries(t *testing.T) {
	t.Run("Ascending observed days", func(t *testing.T) {
		buckets := Buckets{"2025-03-02": d("-5"), "2025-03-01": d("10"), "2025-02-27": d("2.5")}
		series := BuildSeries(buckets, Month{Year: 2025, Month: time.March}, d("100"))

		require.Len(t, series, 3)
		assert.Equal(t, "2025-02-27", series[0].Date)
		assert.Equal(t, "2025-03-02", series[2].Date)
		assert.Equal(t, "7.5", series[2].CumulativePnL.String())
		assert.Equal(t, "107.5", series[2].Equity.String())
	})

	t.Run("No trades covers the month", func(t *testing.T) {
		series := BuildSeries(Buckets{}, Month{Year: 2024, Month: time.February}, d("100"))
		require.Len(t, series, 29)
		assert.Equal(t, "2024-02-01", series[0].Date)
		assert.Equal(t, "2024-02-29", series[28].Date)
		for _, p := range series {
			assert.True(t, p.DailyPnL.IsZero())
			assert.Equal(t, "100", p.Equity.String())
		}
	})
}

func TestHeatBucketFor(t *testing.T) {
	testCases := []struct {
		value    string
		expected HeatBucket
	}{
		{"0", HeatZero},
		{"37", HeatMediumGain},
		{"-7", HeatLowLoss},
		{"0.01", HeatMinimalGain},
		{"5", HeatMinimalGain},
		{"5.01", HeatLowGain},
		{"10", HeatLowGain},
		{"11", HeatModerateGain},
		{"20", HeatModerateGain},
		{"50", HeatMediumGain},
		{"50.5", HeatHighGain},
		{"-0.5", HeatMinimalLoss},
		{"-15", HeatModerateLoss},
		{"-21", HeatMediumLoss},
		{"-1000", HeatHighLoss},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			assert.Equal(t, tc.expected, HeatBucketFor(d(tc.value)))
		})
	}
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-12", m.Prev().String())
	assert.Equal(t, "2025-02", m.Next().String())
	assert.Equal(t, "2026-03", m.Add(14).String())
	assert.Equal(t, 31, m.Days())
	assert.Equal(t, 28, m.Next().Days())
	assert.Equal(t, "2025-01-09", m.DayKey(9))

	_, err = ParseMonth("January")
	assert.Error(t, err)
}

func TestBuildCalendar(t *testing.T) {
	buckets := Buckets{"2025-03-03": d("37"), "2025-03-10": d("-7"), "2025-04-01": d("99")}
	today := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	cal := BuildCalendar(buckets, Month{Year: 2025, Month: time.March}, today, time.UTC)

	assert.Equal(t, "2025-03", cal.Month)
	assert.Equal(t, "2025-02", cal.Prev)
	assert.Equal(t, "2025-04", cal.Next)
	assert.Equal(t, 6, cal.LeadingBlanks, "1 March 2025 is a Saturday")
	require.Len(t, cal.Days, 31)
	assert.Equal(t, "30", cal.MonthPnL.String())

	assert.Equal(t, HeatMediumGain, cal.Days[2].Bucket)
	assert.True(t, cal.Days[2].HasTrades)
	assert.Equal(t, HeatLowLoss, cal.Days[9].Bucket)
	assert.True(t, cal.Days[9].Today)
	assert.False(t, cal.Days[0].HasTrades)
	assert.Equal(t, HeatZero, cal.Days[0].Bucket)

	t.Run("Month outside loaded data shows zeros", func(t *testing.T) {
		empty := BuildCalendar(buckets, Month{Year: 2024, Month: time.June}, today, time.UTC)
		assert.True(t, empty.MonthPnL.IsZero())
		for _, day := range empty.Days {
			assert.False(t, day.HasTrades)
			assert.False(t, day.Today)
		}
	})
}
