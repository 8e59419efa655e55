package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() TradeInput {
	return TradeInput{
		Futures:     "btcusdt",
		EntryPrice:  "60000",
		ClosePrice:  "61000",
		Leverage:    "10",
		Quantity:    "0.01",
		RealizedPnL: "10",
	}
}

func TestParseTradeInput(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("Defaults and normalization", func(t *testing.T) {
		p, err := ParseTradeInput(validInput(), now)
		require.NoError(t, err)

		assert.Equal(t, "BTCUSDT", p.Symbol)
		assert.Equal(t, MarginCross, p.MarginMode)
		assert.Equal(t, DirectionLong, p.Direction)
		assert.False(t, p.LiquidationPrice.Valid)
		assert.Equal(t, "2025-03-14 09:30:00", p.OpenTime)
		assert.Equal(t, "2025-03-14 09:30:00", p.CloseTime)
		assert.True(t, p.IsWin)
		assert.True(t, decimal.RequireFromString("0.01").Equal(p.Quantity))
	})

	t.Run("Negative PnL is a loss", func(t *testing.T) {
		in := validInput()
		in.RealizedPnL = "-12.5"
		p, err := ParseTradeInput(in, now)
		require.NoError(t, err)
		assert.False(t, p.IsWin)
		assert.True(t, decimal.RequireFromString("-12.5").Equal(p.RealizedPnL))
	})

	t.Run("Zero PnL counts as a win", func(t *testing.T) {
		in := validInput()
		in.RealizedPnL = "0"
		p, err := ParseTradeInput(in, now)
		require.NoError(t, err)
		assert.True(t, p.IsWin)
	})

	t.Run("Zero leverage defaults to one", func(t *testing.T) {
		in := validInput()
		in.Leverage = "0"
		p, err := ParseTradeInput(in, now)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1).Equal(p.Leverage))
	})

	t.Run("Optional fields", func(t *testing.T) {
		in := validInput()
		in.MarginMode = "Isolated"
		in.TradeDirection = "SHORT"
		in.LiquidationPrice = "45000"
		in.OpenTime = "2025-03-01 10:00:00"
		in.CloseTime = "2025-03-02 11:00:00"
		p, err := ParseTradeInput(in, now)
		require.NoError(t, err)
		assert.Equal(t, MarginIsolated, p.MarginMode)
		assert.Equal(t, DirectionShort, p.Direction)
		assert.True(t, p.LiquidationPrice.Valid)
		assert.Equal(t, "2025-03-02 11:00:00", p.CloseTime)
	})

	testCases := []struct {
		name   string
		mutate func(*TradeInput)
		fields []string
	}{
		{name: "Missing everything", mutate: func(in *TradeInput) { *in = TradeInput{} },
			fields: []string{"futures", "entry_price", "close_price", "quantity", "leverage", "realized_pnl"}},
		{name: "Non-numeric price", mutate: func(in *TradeInput) { in.EntryPrice = "abc" }, fields: []string{"entry_price"}},
		{name: "Negative quantity", mutate: func(in *TradeInput) { in.Quantity = "-1" }, fields: []string{"quantity"}},
		{name: "Zero close price", mutate: func(in *TradeInput) { in.ClosePrice = "0" }, fields: []string{"close_price"}},
		{name: "Bad liquidation price", mutate: func(in *TradeInput) { in.LiquidationPrice = "-5" }, fields: []string{"liquidation_price"}},
		{name: "Negative leverage", mutate: func(in *TradeInput) { in.Leverage = "-2" }, fields: []string{"leverage"}},
		{name: "Unknown margin mode", mutate: func(in *TradeInput) { in.MarginMode = "portfolio" }, fields: []string{"margin_mode"}},
		{name: "Unknown direction", mutate: func(in *TradeInput) { in.TradeDirection = "sideways" }, fields: []string{"trade_direction"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := ParseTradeInput(in, now)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tc.fields, got)
		})
	}
}

func TestTradeInputJSON(t *testing.T) {
	var in TradeInput
	err := json.Unmarshal([]byte(`{"futures":"ethusdt","entry_price":3000,"close_price":"3100","leverage":5,"quantity":1.5,"realized_pnl":-2.25,"liquidation_price":null}`), &in)
	require.NoError(t, err)

	assert.Equal(t, InputValue("3000"), in.EntryPrice)
	assert.Equal(t, InputValue("3100"), in.ClosePrice)
	assert.Equal(t, InputValue("-2.25"), in.RealizedPnL)
	assert.Equal(t, InputValue(""), in.LiquidationPrice)
}

func TestTradeJSON(t *testing.T) {
	raw := `{"id":42,"user_id":"u-1","futures":"BTCUSDT","margin_mode":"cross","entry_price":60000,
		"close_price":61000,"liquidation_price":null,"trade_direction":"long","leverage":10,"quantity":0.01,
		"realized_pnl":10,"open_time":"2025-03-01 10:00:00","close_time":"2025-03-01 12:00:00","is_win":true,
		"created_at":"2025-03-01T12:00:01.123456+00:00","updated_at":"2025-03-01T12:00:01.123456+00:00"}`

	var trade Trade
	require.NoError(t, json.Unmarshal([]byte(raw), &trade))

	assert.Equal(t, TradeID("42"), trade.ID)
	assert.Equal(t, "BTCUSDT", trade.Symbol)
	assert.False(t, trade.LiquidationPrice.Valid)
	assert.True(t, decimal.NewFromInt(600).Equal(trade.Notional()))
	assert.Equal(t, 2025, trade.CreatedAt.Year())

	var byString Trade
	require.NoError(t, json.Unmarshal([]byte(`{"id":"8f6c"}`), &byString))
	assert.Equal(t, TradeID("8f6c"), byString.ID)
}

func TestProfileUpdateValidate(t *testing.T) {
	blank := "  "
	level := ExperienceLevel("wizard")
	good := ExperienceAdvanced
	name := "Ada"

	assert.Error(t, ProfileUpdate{FullName: &blank}.Validate())
	assert.Error(t, ProfileUpdate{ExperienceLevel: &level}.Validate())
	assert.NoError(t, ProfileUpdate{FullName: &name, ExperienceLevel: &good}.Validate())
}

func TestDefaultProfile(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	named := User{ID: "u-1", Email: "ada@example.com", UserMetadata: map[string]any{"full_name": "Ada"}}
	assert.Equal(t, "Ada", DefaultProfile(named, now).FullName)

	anonymous := User{ID: "u-2", Email: "anon@example.com"}
	p := DefaultProfile(anonymous, now)
	assert.Equal(t, DefaultDisplayName, p.FullName)
	assert.Equal(t, "anon@example.com", p.Email)
	assert.Equal(t, now, p.CreatedAt)
}
