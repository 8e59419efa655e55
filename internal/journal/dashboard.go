package journal

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"trading-journal-go/internal/stats"
)

// Dashboard is everything the statistics view shows for one page.
type Dashboard struct {
	Page     *Page               `json:"page"`
	Summary  stats.Summary       `json:"summary"`
	Series   []stats.SeriesPoint `json:"series"`
	Calendar stats.Calendar      `json:"calendar"`
}

// CurrentMonth is the month of now in the journal location.
func (s *Service) CurrentMonth() stats.Month {
	return stats.MonthOf(s.now().In(s.loc))
}

// Dashboard loads a page and derives its statistics. The summary, series and
// calendar only cover the trades of that page; month selects the calendar
// independently of the page.
func (s *Service) Dashboard(ctx context.Context, userID string, page int, month stats.Month) (*Dashboard, error) {
	p, err := s.LoadPage(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	buckets := stats.DailyBuckets(p.Trades, s.loc)
	return &Dashboard{
		Page:     p,
		Summary:  stats.Summarize(p.Trades),
		Series:   stats.BuildSeries(buckets, month, decimal.NewFromFloat(s.cfg.StartingEquity)),
		Calendar: stats.BuildCalendar(buckets, month, s.now(), s.loc),
	}, nil
}

// HistorySummary summarizes every trade of the user rather than one page.
func (s *Service) HistorySummary(ctx context.Context, userID string) (stats.Summary, error) {
	if s.trades == nil {
		local, err := s.cache.Load(ctx)
		if err != nil {
			return stats.Summary{}, fmt.Errorf("failed to read local trades: %w", err)
		}
		return stats.Summarize(local), nil
	}

	trades, err := s.trades.ListAllTrades(ctx, userID)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(trades), nil
}
