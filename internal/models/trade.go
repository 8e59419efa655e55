package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarginMode is the futures margin mode of a position.
type MarginMode string

const (
	MarginCross    MarginMode = "cross"
	MarginIsolated MarginMode = "isolated"
)

// Direction is the side of a position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// TradeID is the server-assigned row identifier. The backend may hand it out
// as a number or as a string, so both are accepted.
type TradeID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *TradeID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TradeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("trade id must be a string or number: %w", err)
	}
	*id = TradeID(n.String())
	return nil
}

// TradePayload is the user-supplied part of a trade, as written to the backend.
type TradePayload struct {
	Symbol           string              `json:"futures"`
	MarginMode       MarginMode          `json:"margin_mode"`
	EntryPrice       decimal.Decimal     `json:"entry_price"`
	ClosePrice       decimal.Decimal     `json:"close_price"`
	LiquidationPrice decimal.NullDecimal `json:"liquidation_price"`
	Direction        Direction           `json:"trade_direction"`
	Leverage         decimal.Decimal     `json:"leverage"`
	Quantity         decimal.Decimal     `json:"quantity"`
	RealizedPnL      decimal.Decimal     `json:"realized_pnl"`
	OpenTime         string              `json:"open_time"`
	CloseTime        string              `json:"close_time"`
	IsWin            bool                `json:"is_win"`
}

// Trade represents a completed trade record owned by one user.
type Trade struct {
	ID     TradeID `json:"id,omitempty"`
	UserID string  `json:"user_id,omitempty"`
	TradePayload
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notional is entry price times quantity.
func (t Trade) Notional() decimal.Decimal {
	return t.EntryPrice.Mul(t.Quantity)
}
