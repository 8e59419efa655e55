package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeTimeLayout is the format used for open/close times that the user left empty.
const TradeTimeLayout = "2006-01-02 15:04:05"

// InputValue is a raw form value. It decodes from a JSON string, number or null
// so that clients may post either `"1.5"` or `1.5`.
type InputValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *InputValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = InputValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*v = InputValue(n.String())
	}
	return nil
}

func (v InputValue) trimmed() string {
	return strings.TrimSpace(string(v))
}

// TradeInput is an unvalidated trade as submitted by a form, a JSON body or the CLI.
type TradeInput struct {
	Futures          InputValue `json:"futures"`
	MarginMode       InputValue `json:"margin_mode"`
	EntryPrice       InputValue `json:"entry_price"`
	ClosePrice       InputValue `json:"close_price"`
	LiquidationPrice InputValue `json:"liquidation_price"`
	TradeDirection   InputValue `json:"trade_direction"`
	Leverage         InputValue `json:"leverage"`
	Quantity         InputValue `json:"quantity"`
	RealizedPnL      InputValue `json:"realized_pnl"`
	OpenTime         InputValue `json:"open_time"`
	CloseTime        InputValue `json:"close_time"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a TradeInput.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid trade: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// ParseTradeInput validates a raw trade and converts it into a payload ready to be stored.
// Empty open/close times default to now, formatted with TradeTimeLayout in now's location.
func ParseTradeInput(in TradeInput, now time.Time) (TradePayload, error) {
	verr := &ValidationError{}
	var p TradePayload

	p.Symbol = strings.ToUpper(in.Futures.trimmed())
	if p.Symbol == "" {
		verr.add("futures", "is required")
	}

	switch mode := MarginMode(strings.ToLower(in.MarginMode.trimmed())); mode {
	case "":
		p.MarginMode = MarginCross
	case MarginCross, MarginIsolated:
		p.MarginMode = mode
	default:
		verr.add("margin_mode", fmt.Sprintf("must be %q or %q", MarginCross, MarginIsolated))
	}

	switch dir := Direction(strings.ToLower(in.TradeDirection.trimmed())); dir {
	case "":
		p.Direction = DirectionLong
	case DirectionLong, DirectionShort:
		p.Direction = dir
	default:
		verr.add("trade_direction", fmt.Sprintf("must be %q or %q", DirectionLong, DirectionShort))
	}

	p.EntryPrice = requirePositive(verr, "entry_price", in.EntryPrice)
	p.ClosePrice = requirePositive(verr, "close_price", in.ClosePrice)
	p.Quantity = requirePositive(verr, "quantity", in.Quantity)

	if raw := in.LiquidationPrice.trimmed(); raw != "" {
		liq, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			verr.add("liquidation_price", "must be a number")
		case !liq.IsPositive():
			verr.add("liquidation_price", "must be positive")
		default:
			p.LiquidationPrice = decimal.NewNullDecimal(liq)
		}
	}

	if raw := in.Leverage.trimmed(); raw == "" {
		verr.add("leverage", "is required")
	} else if lev, err := decimal.NewFromString(raw); err != nil {
		verr.add("leverage", "must be a number")
	} else if lev.IsNegative() {
		verr.add("leverage", "must be positive")
	} else if lev.IsZero() {
		p.Leverage = decimal.NewFromInt(1)
	} else {
		p.Leverage = lev
	}

	if raw := in.RealizedPnL.trimmed(); raw == "" {
		verr.add("realized_pnl", "is required")
	} else if pnl, err := decimal.NewFromString(raw); err != nil {
		verr.add("realized_pnl", "must be a number")
	} else {
		p.RealizedPnL = pnl
	}

	if len(verr.Fields) > 0 {
		return TradePayload{}, verr
	}

	stamp := now.Format(TradeTimeLayout)
	p.OpenTime = in.OpenTime.trimmed()
	if p.OpenTime == "" {
		p.OpenTime = stamp
	}
	p.CloseTime = in.CloseTime.trimmed()
	if p.CloseTime == "" {
		p.CloseTime = stamp
	}

	p.IsWin = !p.RealizedPnL.IsNegative()
	return p, nil
}

func requirePositive(verr *ValidationError, field string, v InputValue) decimal.Decimal {
	raw := v.trimmed()
	if raw == "" {
		verr.add(field, "is required")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.add(field, "must be a number")
		return decimal.Zero
	}
	if !d.IsPositive() {
		verr.add(field, "must be positive")
		return decimal.Zero
	}
	return d
}
