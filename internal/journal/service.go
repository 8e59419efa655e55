// Package journal applies the read and write policy around the remote trade
// table: validation before any network call, and a local fallback list when
// the backend cannot be reached.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/localstore"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/supabase"
)

// LocalSaveWarning is shown when a trade could only be kept on this device.
const LocalSaveWarning = "Trade saved locally (database unavailable). Data will sync when connection is restored."

// LocalUserID owns trades when the process runs without a backend.
const LocalUserID = "local"

// ErrValidation wraps a *models.ValidationError.
var ErrValidation = errors.New("invalid trade")

// Source tells where a page of trades was read from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Page is one page of trades, newest first.
type Page struct {
	Trades     []models.Trade `json:"trades"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Source     Source         `json:"source"`
}

// AddResult is the outcome of AddTrade. Local is set when the trade only
// reached the fallback list.
type AddResult struct {
	Trade   models.Trade `json:"trade"`
	Local   bool         `json:"local"`
	Warning string       `json:"warning,omitempty"`
}

// Service implements the journal operations for one backend.
type Service struct {
	trades supabase.TradeTable
	cache  *localstore.TradeCache
	cfg    config.Journal
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
	newID  func() (uuid.UUID, error)
}

// NewService creates a journal service. trades is nil when the backend is not
// configured; reads and inserts then go to the local list only.
func NewService(trades supabase.TradeTable, cache *localstore.TradeCache, cfg config.Journal, logger *zap.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &Service{
		trades: trades,
		cache:  cache,
		cfg:    cfg,
		loc:    cfg.Location(),
		logger: logger.Named("journal"),
		now:    time.Now,
		newID:  uuid.NewV7,
	}
}

// Remote reports whether a backend is configured.
func (s *Service) Remote() bool {
	return s.trades != nil
}

// PageSize is the number of trades per page.
func (s *Service) PageSize() int {
	return s.cfg.PageSize
}

// LoadPage returns one page of the user's trades. Any remote failure is
// logged and the page is served from the local fallback list instead.
func (s *Service) LoadPage(ctx context.Context, userID string, page int) (*Page, error) {
	if page < 1 {
		return nil, supabase.ErrInvalidPage
	}

	if s.trades != nil {
		remote, err := s.trades.ListTrades(ctx, userID, page, s.cfg.PageSize)
		if err == nil {
			return &Page{
				Trades:     remote.Trades,
				Total:      remote.Total,
				Page:       remote.Page,
				PageSize:   remote.PageSize,
				TotalPages: remote.TotalPages,
				Source:     SourceRemote,
			}, nil
		}
		s.logger.Error("Failed to load trades, serving local list", zap.String("user_id", userID), zap.Int("page", page), zap.Error(err))
	}

	return s.localPage(ctx, page)
}

func (s *Service) localPage(ctx context.Context, page int) (*Page, error) {
	trades, err := s.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local trades: %w", err)
	}

	size := s.cfg.PageSize
	start := min((page-1)*size, len(trades))
	end := min(start+size, len(trades))

	totalPages := supabase.TotalPages(int64(len(trades)), size)
	if totalPages == 0 {
		totalPages = 1
	}
	return &Page{
		Trades:     trades[start:end],
		Total:      int64(len(trades)),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Source:     SourceLocal,
	}, nil
}

// AddTrade validates input and stores it. When the insert fails the trade is
// kept in the local fallback list with a time-ordered local identifier; it is
// not retried.
func (s *Service) AddTrade(ctx context.Context, userID string, input models.TradeInput) (*AddResult, error) {
	payload, err := s.parse(input)
	if err != nil {
		return nil, err
	}

	if s.trades != nil {
		trade, err := s.trades.InsertTrade(ctx, userID, payload)
		if err == nil {
			return &AddResult{Trade: *trade}, nil
		}
		s.logger.Error("Failed to insert trade, saving locally", zap.String("user_id", userID), zap.String("symbol", payload.Symbol), zap.Error(err))
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate local trade id: %w", err)
	}
	now := s.now().UTC()
	trade := models.Trade{
		ID:           models.TradeID(id.String()),
		UserID:       userID,
		TradePayload: payload,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.cache.Prepend(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to save trade locally: %w", err)
	}

	s.logger.Warn("Trade saved locally", zap.String("trade_id", string(trade.ID)))
	return &AddResult{Trade: trade, Local: true, Warning: LocalSaveWarning}, nil
}

// UpdateTrade validates input and replaces the stored trade. Errors are
// returned as-is; there is no local fallback for edits.
func (s *Service) UpdateTrade(ctx context.Context, userID string, id models.TradeID, input models.TradeInput) (*models.Trade, error) {
	payload, err := s.parse(input)
	if err != nil {
		return nil, err
	}
	if s.trades == nil {
		return nil, supabase.ErrNotConfigured
	}
	return s.trades.UpdateTrade(ctx, id, userID, payload)
}

// DeleteTrade removes one trade of the user.
func (s *Service) DeleteTrade(ctx context.Context, userID string, id models.TradeID) error {
	if s.trades == nil {
		return supabase.ErrNotConfigured
	}
	return s.trades.DeleteTrade(ctx, id, userID)
}

// ClearAllTrades removes every remote trade of the user.
func (s *Service) ClearAllTrades(ctx context.Context, userID string) error {
	if s.trades == nil {
		return supabase.ErrNotConfigured
	}
	return s.trades.DeleteAllTrades(ctx, userID)
}

func (s *Service) parse(input models.TradeInput) (models.TradePayload, error) {
	payload, err := models.ParseTradeInput(input, s.now().In(s.loc))
	if err != nil {
		return models.TradePayload{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return payload, nil
}
