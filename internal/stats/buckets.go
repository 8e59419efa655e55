package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trading-journal-go/internal/models"
)

// DayKeyLayout is the layout of daily bucket keys.
const DayKeyLayout = "2006-01-02"

// closeTimeLayouts are tried in order against a trade's close time.
// Layouts without a zone are read in the journal location.
var closeTimeLayouts = []string{
	models.TradeTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	DayKeyLayout,
}

// Buckets maps a local day key (YYYY-MM-DD) to the summed realized PnL of that day.
type Buckets map[string]decimal.Decimal

// Keys returns the day keys in ascending order.
func (b Buckets) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the PnL of a day, zero when nothing was traded.
func (b Buckets) Get(key string) decimal.Decimal {
	if v, ok := b[key]; ok {
		return v
	}
	return decimal.Zero
}

// Total is the sum over every bucket.
func (b Buckets) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// DailyBuckets sums realized PnL per local calendar day. A trade is placed on
// the day of its close time, or on the day it was created when the close
// time cannot be parsed.
func DailyBuckets(trades []models.Trade, loc *time.Location) Buckets {
	if loc == nil {
		loc = time.Local
	}
	buckets := make(Buckets)
	for _, t := range trades {
		key := TradeDay(t, loc).Format(DayKeyLayout)
		buckets[key] = buckets.Get(key).Add(t.RealizedPnL)
	}
	return buckets
}

// TradeDay returns the instant a trade is bucketed under, in loc.
func TradeDay(t models.Trade, loc *time.Location) time.Time {
	if closed, ok := parseCloseTime(t.CloseTime, loc); ok {
		return closed
	}
	return t.CreatedAt.In(loc)
}

func parseCloseTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true
	}
	for _, layout := range closeTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
