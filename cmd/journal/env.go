package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"trading-journal-go/internal/app"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/logger"
)

type globalOptions struct {
	configDir string
	email     string
	password  string
	logLevel  string
}

// environment is an initialized journal with the owner of the command.
type environment struct {
	app    *app.App
	log    *zap.Logger
	userID string
}

// setup loads configuration and signs in. A persisted session is reused;
// credentials are only needed when there is none.
func setup(ctx context.Context, opts *globalOptions) (*environment, error) {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logger.Level = opts.logLevel
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return nil, err
	}

	if a.Client != nil {
		if snap := a.Session.Start(ctx); !snap.Authenticated() {
			email := firstNonEmpty(opts.email, os.Getenv("JOURNAL_EMAIL"))
			password := firstNonEmpty(opts.password, os.Getenv("JOURNAL_PASSWORD"))
			if _, err := a.Session.SignIn(ctx, email, password); err != nil {
				return nil, fmt.Errorf("sign in failed: %w", err)
			}
		}
	}

	userID, err := a.UserID()
	if err != nil {
		return nil, err
	}
	return &environment{app: a, log: log, userID: userID}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// printYAML writes v as YAML using its JSON field names.
func printYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
