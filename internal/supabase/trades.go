package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"trading-journal-go/internal/models"
)

// tradeOrder is the stable page order. The id tie-breaker keeps rows with the
// same created_at from moving between consecutive pages.
const tradeOrder = "created_at.desc,id.desc"

// listAllChunk is the page size used when walking the whole history.
const listAllChunk = 1000

// TradeTable is the typed access to the remote trades table.
// Every operation is scoped to the owning user.
type TradeTable interface {
	ListTrades(ctx context.Context, userID string, page, pageSize int) (*TradePage, error)
	ListAllTrades(ctx context.Context, userID string) ([]models.Trade, error)
	CountTrades(ctx context.Context, userID string) (int64, error)
	InsertTrade(ctx context.Context, userID string, payload models.TradePayload) (*models.Trade, error)
	UpdateTrade(ctx context.Context, id models.TradeID, userID string, payload models.TradePayload) (*models.Trade, error)
	DeleteTrade(ctx context.Context, id models.TradeID, userID string) error
	DeleteAllTrades(ctx context.Context, userID string) error
}

// TradePage is one page of trades, newest first.
type TradePage struct {
	Trades     []models.Trade `json:"trades"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

type insertTradeRow struct {
	UserID string `json:"user_id"`
	models.TradePayload
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type updateTradeRow struct {
	models.TradePayload
	UpdatedAt string `json:"updated_at"`
}

func (c *RestClient) timestamp() string {
	return c.now().UTC().Format(time.RFC3339Nano)
}

// ListTrades returns the requested page together with the exact total count.
func (c *RestClient) ListTrades(ctx context.Context, userID string, page, pageSize int) (*TradePage, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}

	var trades []models.Trade
	req := c.newRequest().
		SetQueryParams(map[string]string{
			"select":  "*",
			"user_id": eq(userID),
			"order":   tradeOrder,
			"limit":   strconv.Itoa(pageSize),
			"offset":  strconv.Itoa((page - 1) * pageSize),
		}).
		SetHeader("Prefer", "count=exact").
		SetResult(&trades)

	resp, err := c.doRequest(ctx, http.MethodGet, tradesPath, req)
	if err != nil {
		c.logger.Error("Failed to list trades", zap.String("user_id", userID), zap.Int("page", page), zap.Error(err))
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	total, err := parseContentRange(resp.Header().Get("Content-Range"))
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	return &TradePage{
		Trades:     trades,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}, nil
}

// ListAllTrades returns the whole trade history of a user, newest first.
// Rows are fetched in chunks until the Content-Range total is reached, since
// the server caps the size of a single response.
func (c *RestClient) ListAllTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	var all []models.Trade
	for {
		var chunk []models.Trade
		req := c.newRequest().
			SetQueryParams(map[string]string{
				"select":  "*",
				"user_id": eq(userID),
				"order":   tradeOrder,
				"limit":   strconv.Itoa(listAllChunk),
				"offset":  strconv.Itoa(len(all)),
			}).
			SetHeader("Prefer", "count=exact").
			SetResult(&chunk)

		resp, err := c.doRequest(ctx, http.MethodGet, tradesPath, req)
		if err != nil {
			c.logger.Error("Failed to list all trades", zap.String("user_id", userID), zap.Int("offset", len(all)), zap.Error(err))
			return nil, fmt.Errorf("failed to list all trades: %w", err)
		}
		total, err := parseContentRange(resp.Header().Get("Content-Range"))
		if err != nil {
			return nil, fmt.Errorf("failed to list all trades: %w", err)
		}

		all = append(all, chunk...)
		if int64(len(all)) >= total {
			return all, nil
		}
		if len(chunk) == 0 {
			return nil, fmt.Errorf("failed to list all trades: got %d of %d rows", len(all), total)
		}
	}
}

// CountTrades returns how many trades the user has without fetching them.
func (c *RestClient) CountTrades(ctx context.Context, userID string) (int64, error) {
	req := c.newRequest().
		SetQueryParams(map[string]string{
			"select":  "id",
			"user_id": eq(userID),
		}).
		SetHeader("Prefer", "count=exact")

	resp, err := c.doRequest(ctx, http.MethodHead, tradesPath, req)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	total, err := parseContentRange(resp.Header().Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return total, nil
}

// InsertTrade stores a new trade and returns the row with its assigned id.
func (c *RestClient) InsertTrade(ctx context.Context, userID string, payload models.TradePayload) (*models.Trade, error) {
	now := c.timestamp()
	row := insertTradeRow{
		UserID:       userID,
		TradePayload: payload,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var rows []models.Trade
	req := c.newRequest().
		SetHeader("Prefer", "return=representation").
		SetBody([]insertTradeRow{row}).
		SetResult(&rows)

	if _, err := c.doRequest(ctx, http.MethodPost, tradesPath, req); err != nil {
		c.logger.Error("Failed to insert trade", zap.String("user_id", userID), zap.String("symbol", payload.Symbol), zap.Error(err))
		return nil, fmt.Errorf("failed to insert trade: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to insert trade: backend returned no row")
	}

	c.logger.Info("Inserted trade", zap.String("trade_id", string(rows[0].ID)), zap.String("symbol", rows[0].Symbol))
	return &rows[0], nil
}

// UpdateTrade replaces the payload of a trade owned by userID.
// It returns ErrNotFound when no row matches both the id and the owner.
func (c *RestClient) UpdateTrade(ctx context.Context, id models.TradeID, userID string, payload models.TradePayload) (*models.Trade, error) {
	var rows []models.Trade
	req := c.newRequest().
		SetQueryParams(map[string]string{
			"id":      eq(string(id)),
			"user_id": eq(userID),
		}).
		SetHeader("Prefer", "return=representation").
		SetBody(updateTradeRow{TradePayload: payload, UpdatedAt: c.timestamp()}).
		SetResult(&rows)

	if _, err := c.doRequest(ctx, http.MethodPatch, tradesPath, req); err != nil {
		c.logger.Error("Failed to update trade", zap.String("trade_id", string(id)), zap.Error(err))
		return nil, fmt.Errorf("failed to update trade %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to update trade %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

// DeleteTrade removes a trade owned by userID. Deleting a missing trade is not an error.
func (c *RestClient) DeleteTrade(ctx context.Context, id models.TradeID, userID string) error {
	req := c.newRequest().SetQueryParams(map[string]string{
		"id":      eq(string(id)),
		"user_id": eq(userID),
	})
	if _, err := c.doRequest(ctx, http.MethodDelete, tradesPath, req); err != nil {
		c.logger.Error("Failed to delete trade", zap.String("trade_id", string(id)), zap.Error(err))
		return fmt.Errorf("failed to delete trade %s: %w", id, err)
	}
	return nil
}

// DeleteAllTrades removes every trade of userID.
func (c *RestClient) DeleteAllTrades(ctx context.Context, userID string) error {
	req := c.newRequest().SetQueryParam("user_id", eq(userID))
	if _, err := c.doRequest(ctx, http.MethodDelete, tradesPath, req); err != nil {
		c.logger.Error("Failed to clear trades", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to clear trades: %w", err)
	}
	return nil
}
