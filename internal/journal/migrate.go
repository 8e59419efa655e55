package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trading-journal-go/internal/supabase"
)

// MigrationResult reports what Migrate did.
type MigrationResult struct {
	Pending  int  `json:"pending"`
	Migrated int  `json:"migrated"`
	Failed   int  `json:"failed"`
	Skipped  bool `json:"skipped"`
}

// Migrate copies the local fallback list into the remote table. It does
// nothing when the user already has remote trades. Records that fail to
// insert are logged and skipped, and the local list is cleared only when at
// least one record was copied.
func (s *Service) Migrate(ctx context.Context, userID string) (*MigrationResult, error) {
	if s.trades == nil {
		return nil, supabase.ErrNotConfigured
	}

	local, err := s.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local trades: %w", err)
	}
	result := &MigrationResult{Pending: len(local)}
	if len(local) == 0 {
		return result, nil
	}

	existing, err := s.trades.CountTrades(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check remote trades: %w", err)
	}
	if existing > 0 {
		s.logger.Info("Remote trades exist, skipping migration", zap.String("user_id", userID), zap.Int64("remote", existing), zap.Int("local", len(local)))
		result.Skipped = true
		return result, nil
	}

	// The list is newest first; insert oldest first so created_at keeps the order.
	for i := len(local) - 1; i >= 0; i-- {
		trade := local[i]
		if _, err := s.trades.InsertTrade(ctx, userID, trade.TradePayload); err != nil {
			s.logger.Error("Failed to migrate trade", zap.String("trade_id", string(trade.ID)), zap.Error(err))
			result.Failed++
			continue
		}
		result.Migrated++
	}

	if result.Migrated > 0 {
		if err := s.cache.Clear(ctx); err != nil {
			return result, fmt.Errorf("failed to clear local trades: %w", err)
		}
	}
	s.logger.Info("Migrated local trades", zap.String("user_id", userID), zap.Int("migrated", result.Migrated), zap.Int("failed", result.Failed))
	return result, nil
}
