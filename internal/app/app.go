// Package app wires the journal components from a loaded configuration.
package app

import (
	"errors"

	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/localstore"
	"trading-journal-go/internal/session"
	"trading-journal-go/internal/supabase"
)

// App holds the wired components shared by the binaries.
type App struct {
	Config  config.Config
	Store   localstore.Backend
	Client  *supabase.RestClient
	Session *session.Holder
	Journal *journal.Service
}

// New builds every component. A missing backend configuration is not an
// error: Client stays nil and the journal works on the local store only.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := localstore.Open(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Store: store}

	client, err := supabase.NewRestClient(&cfg.Backend, logger)
	switch {
	case err == nil:
		a.Client = client
	case errors.Is(err, supabase.ErrNotConfigured):
		logger.Warn("Backend not configured, trades are kept locally only")
	default:
		return nil, err
	}

	if a.Client != nil {
		a.Session = session.NewHolder(a.Client, a.Client, store, cfg.Auth, logger)
		a.Client.SetTokenSource(a.Session)
		a.Journal = journal.NewService(a.Client, localstore.NewTradeCache(store), cfg.Journal, logger)
	} else {
		a.Session = session.NewHolder(nil, nil, store, cfg.Auth, logger)
		a.Journal = journal.NewService(nil, localstore.NewTradeCache(store), cfg.Journal, logger)
	}
	return a, nil
}

// UserID returns the owner for journal calls: the signed-in user, or the
// local user when there is no backend.
func (a *App) UserID() (string, error) {
	if a.Client == nil {
		return journal.LocalUserID, nil
	}
	return a.Session.UserID()
}
