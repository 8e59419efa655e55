package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"trading-journal-go/internal/models"
)

// FallbackTradesKey is the single key holding the serialized fallback trade list.
const FallbackTradesKey = "tradingTrades"

// TradeCache is the fallback trade list, newest first.
// The mutex only orders writers inside this process; other processes sharing
// the backend race and the last writer wins.
type TradeCache struct {
	backend Backend
	mu      sync.Mutex
}

func NewTradeCache(backend Backend) *TradeCache {
	return &TradeCache{backend: backend}
}

// Load returns the cached trades, or nil if nothing was ever saved.
func (c *TradeCache) Load(ctx context.Context) ([]models.Trade, error) {
	raw, found, err := c.backend.Get(ctx, FallbackTradesKey)
	if err != nil {
		return nil, err
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}
	var trades []models.Trade
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("failed to decode fallback trades: %w", err)
	}
	return trades, nil
}

// Prepend adds trade in front of the cached list and persists the result.
func (c *TradeCache) Prepend(ctx context.Context, trade models.Trade) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	trades, err := c.Load(ctx)
	if err != nil {
		return err
	}
	trades = append([]models.Trade{trade}, trades...)

	raw, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("failed to encode fallback trades: %w", err)
	}
	return c.backend.Set(ctx, FallbackTradesKey, raw)
}

// Clear drops the cached list.
func (c *TradeCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Delete(ctx, FallbackTradesKey)
}
