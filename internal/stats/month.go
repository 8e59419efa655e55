package stats

import (
	"fmt"
	"time"
)

// Month is a calendar month, independent of any location.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month t falls in, as seen in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Add moves n months forward (or backward for negative n).
func (m Month) Add(n int) Month {
	return MonthOf(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

func (m Month) Next() Month { return m.Add(1) }

func (m Month) Prev() Month { return m.Add(-1) }

// Days is the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// First is midnight of the first day in loc.
func (m Month) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// DayKey is the bucket key of the given day of the month.
func (m Month) DayKey(day int) string {
	return fmt.Sprintf("%s-%02d", m, day)
}
