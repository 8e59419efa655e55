// Package mocks provides testify mocks of the backend gateway interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"trading-journal-go/internal/models"
	"trading-journal-go/internal/supabase"
)

var (
	_ supabase.AuthAPI      = (*AuthAPI)(nil)
	_ supabase.ProfileTable = (*ProfileTable)(nil)
	_ supabase.TradeTable   = (*TradeTable)(nil)
)

// AuthAPI is a mock implementation of supabase.AuthAPI.
type AuthAPI struct {
	mock.Mock
}

func (m *AuthAPI) SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(*supabase.Session)
	return session, args.Error(1)
}

func (m *AuthAPI) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*supabase.SignUpResult, error) {
	args := m.Called(ctx, email, password, metadata)
	result, _ := args.Get(0).(*supabase.SignUpResult)
	return result, args.Error(1)
}

func (m *AuthAPI) RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error) {
	args := m.Called(ctx, refreshToken)
	session, _ := args.Get(0).(*supabase.Session)
	return session, args.Error(1)
}

func (m *AuthAPI) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	args := m.Called(ctx, accessToken)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *AuthAPI) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

// ProfileTable is a mock implementation of supabase.ProfileTable.
type ProfileTable struct {
	mock.Mock
}

func (m *ProfileTable) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *ProfileTable) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, profile)
	created, _ := args.Get(0).(*models.Profile)
	return created, args.Error(1)
}

func (m *ProfileTable) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error) {
	args := m.Called(ctx, id, update)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *ProfileTable) CreateProfileRPC(ctx context.Context, userID, email, fullName string) error {
	return m.Called(ctx, userID, email, fullName).Error(0)
}

// TradeTable is a mock implementation of supabase.TradeTable.
type TradeTable struct {
	mock.Mock
}

func (m *TradeTable) ListTrades(ctx context.Context, userID string, page, pageSize int) (*supabase.TradePage, error) {
	args := m.Called(ctx, userID, page, pageSize)
	result, _ := args.Get(0).(*supabase.TradePage)
	return result, args.Error(1)
}

func (m *TradeTable) ListAllTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	args := m.Called(ctx, userID)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *TradeTable) CountTrades(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

func (m *TradeTable) InsertTrade(ctx context.Context, userID string, payload models.TradePayload) (*models.Trade, error) {
	args := m.Called(ctx, userID, payload)
	trade, _ := args.Get(0).(*models.Trade)
	return trade, args.Error(1)
}

func (m *TradeTable) UpdateTrade(ctx context.Context, id models.TradeID, userID string, payload models.TradePayload) (*models.Trade, error) {
	args := m.Called(ctx, id, userID, payload)
	trade, _ := args.Get(0).(*models.Trade)
	return trade, args.Error(1)
}

func (m *TradeTable) DeleteTrade(ctx context.Context, id models.TradeID, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *TradeTable) DeleteAllTrades(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
