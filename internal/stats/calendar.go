package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// HeatBucket is the discrete color tier of a calendar day.
type HeatBucket string

const (
	HeatHighGain     HeatBucket = "high_gain"
	HeatMediumGain   HeatBucket = "medium_gain"
	HeatModerateGain HeatBucket = "moderate_gain"
	HeatLowGain      HeatBucket = "low_gain"
	HeatMinimalGain  HeatBucket = "minimal_gain"
	HeatZero         HeatBucket = "zero"
	HeatMinimalLoss  HeatBucket = "minimal_loss"
	HeatLowLoss      HeatBucket = "low_loss"
	HeatModerateLoss HeatBucket = "moderate_loss"
	HeatMediumLoss   HeatBucket = "medium_loss"
	HeatHighLoss     HeatBucket = "high_loss"
)

var (
	heatHigh     = decimal.NewFromInt(50)
	heatMedium   = decimal.NewFromInt(20)
	heatModerate = decimal.NewFromInt(10)
	heatLow      = decimal.NewFromInt(5)
)

// HeatBucketFor maps a day's PnL onto one of eleven tiers by magnitude:
// above 50, above 20, above 10, above 5, and anything else non-zero.
func HeatBucketFor(value decimal.Decimal) HeatBucket {
	if value.IsZero() {
		return HeatZero
	}
	gain := value.IsPositive()
	abs := value.Abs()
	switch {
	case abs.GreaterThan(heatHigh):
		return pick(gain, HeatHighGain, HeatHighLoss)
	case abs.GreaterThan(heatMedium):
		return pick(gain, HeatMediumGain, HeatMediumLoss)
	case abs.GreaterThan(heatModerate):
		return pick(gain, HeatModerateGain, HeatModerateLoss)
	case abs.GreaterThan(heatLow):
		return pick(gain, HeatLowGain, HeatLowLoss)
	default:
		return pick(gain, HeatMinimalGain, HeatMinimalLoss)
	}
}

func pick(gain bool, up, down HeatBucket) HeatBucket {
	if gain {
		return up
	}
	return down
}

// CalendarDay is one cell of the monthly heat map.
type CalendarDay struct {
	Date      string          `json:"date"`
	Day       int             `json:"day"`
	PnL       decimal.Decimal `json:"pnl"`
	Bucket    HeatBucket      `json:"bucket"`
	HasTrades bool            `json:"has_trades"`
	Today     bool            `json:"today"`
}

// Calendar is a month laid out for a Sunday-first grid.
type Calendar struct {
	Month         string          `json:"month"`
	Prev          string          `json:"prev"`
	Next          string          `json:"next"`
	LeadingBlanks int             `json:"leading_blanks"`
	MonthPnL      decimal.Decimal `json:"month_pnl"`
	Days          []CalendarDay   `json:"days"`
}

// BuildCalendar lays out month from the already computed buckets. Days
// outside the buckets show zero; nothing is fetched for them.
func BuildCalendar(buckets Buckets, month Month, today time.Time, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	todayKey := today.In(loc).Format(DayKeyLayout)

	cal := Calendar{
		Month:         month.String(),
		Prev:          month.Prev().String(),
		Next:          month.Next().String(),
		LeadingBlanks: int(month.First(loc).Weekday()),
		MonthPnL:      decimal.Zero,
		Days:          make([]CalendarDay, 0, month.Days()),
	}
	for day := 1; day <= month.Days(); day++ {
		key := month.DayKey(day)
		pnl, traded := buckets[key]
		if !traded {
			pnl = decimal.Zero
		}
		cal.MonthPnL = cal.MonthPnL.Add(pnl)
		cal.Days = append(cal.Days, CalendarDay{
			Date:      key,
			Day:       day,
			PnL:       pnl,
			Bucket:    HeatBucketFor(pnl),
			HasTrades: traded,
			Today:     key == todayKey,
		})
	}
	return cal
}
