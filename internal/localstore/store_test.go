package localstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/database"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return NewSQLiteStore(db)
}

func TestBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Backend{
		"Memory": func(t *testing.T) Backend { return NewMemoryStore() },
		"SQLite": func(t *testing.T) Backend { return newTestSQLite(t) },
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBackend(t)

			_, found, err := b.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, b.Set(ctx, "k", []byte("v1")))
			require.NoError(t, b.Set(ctx, "k", []byte("v2")))

			v, found, err := b.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("v2"), v)

			require.NoError(t, b.Delete(ctx, "k"))
			require.NoError(t, b.Delete(ctx, "k"), "deleting twice is not an error")

			_, found, err = b.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestOpen(t *testing.T) {
	log := zap.NewNop()

	b, err := Open(config.Store{Driver: "memory"}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b)

	b, err = Open(config.Store{Driver: "sqlite", DSN: "file::memory:"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, b)

	b, err = Open(config.Store{Driver: "redis", RedisAddr: "localhost:6379"}, log)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, b)

	_, err = Open(config.Store{Driver: "etcd"}, log)
	assert.Error(t, err)
}
