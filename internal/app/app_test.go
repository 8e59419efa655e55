package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/session"
)

func TestNew(t *testing.T) {
	t.Run("Local only", func(t *testing.T) {
		a, err := New(config.Config{Store: config.Store{Driver: "memory"}}, zap.NewNop())
		require.NoError(t, err)

		assert.Nil(t, a.Client)
		assert.False(t, a.Journal.Remote())
		userID, err := a.UserID()
		require.NoError(t, err)
		assert.Equal(t, journal.LocalUserID, userID)
		assert.Equal(t, session.StateUnauthenticated, a.Session.Start(context.Background()).State)
	})

	t.Run("With backend", func(t *testing.T) {
		cfg := config.Config{
			Store:   config.Store{Driver: "memory"},
			Backend: config.Backend{URL: "https://example.supabase.co", ApiKey: "anon"},
		}
		a, err := New(cfg, zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, a.Client)
		assert.True(t, a.Journal.Remote())
		_, err = a.UserID()
		assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	})

	t.Run("Unknown store driver", func(t *testing.T) {
		_, err := New(config.Config{Store: config.Store{Driver: "etcd"}}, zap.NewNop())
		assert.Error(t, err)
	})
}
