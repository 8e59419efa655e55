// Package session holds the signed-in identity of the journal process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/localstore"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/supabase"
)

// StorageKey is the local store key of the persisted session.
const StorageKey = "journal.session"

// State is the authentication state of the holder.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

var (
	ErrNotAuthenticated   = errors.New("not signed in")
	ErrAlreadyRegistered  = errors.New("an account with this email already exists")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Snapshot is a copy of the holder state handed to callers and subscribers.
type Snapshot struct {
	State   State           `json:"state"`
	Loading bool            `json:"loading"`
	User    *models.User    `json:"user,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// Authenticated reports whether the snapshot carries a signed-in user.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// SignUpOutcome tells the caller whether the new account still has to confirm its email.
type SignUpOutcome struct {
	User                 models.User `json:"user"`
	ConfirmationRequired bool        `json:"confirmation_required"`
}

// Holder is the single writer of the authentication state. Subscribers are
// notified with a Snapshot after every transition, outside the lock.
type Holder struct {
	auth     supabase.AuthAPI
	profiles supabase.ProfileTable
	store    localstore.Backend
	cfg      config.Auth
	logger   *zap.Logger
	now      func() time.Time

	// storeMu orders sign out against refresh writes to the store.
	storeMu sync.Mutex

	mu          sync.RWMutex
	state       State
	loading     bool
	hidden      bool
	session     *supabase.Session
	profile     *models.Profile
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

var _ supabase.TokenSource = (*Holder)(nil)

// NewHolder creates a holder in the unauthenticated state. auth and profiles
// are nil when the backend is not configured.
func NewHolder(auth supabase.AuthAPI, profiles supabase.ProfileTable, store localstore.Backend, cfg config.Auth, logger *zap.Logger) *Holder {
	return &Holder{
		auth:        auth,
		profiles:    profiles,
		store:       store,
		cfg:         cfg,
		logger:      logger.Named("session"),
		now:         time.Now,
		state:       StateUnauthenticated,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (h *Holder) Subscribe(fn func(Snapshot)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSubID
	h.nextSubID++
	h.subscribers[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers, id)
	}
}

// Snapshot returns the current state.
func (h *Holder) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

func (h *Holder) snapshotLocked() Snapshot {
	snap := Snapshot{State: h.state, Loading: h.loading}
	if h.state == StateAuthenticated && h.session != nil {
		user := h.session.User
		snap.User = &user
		if h.profile != nil {
			profile := *h.profile
			snap.Profile = &profile
		}
	}
	return snap
}

// AccessToken implements supabase.TokenSource.
func (h *Holder) AccessToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state != StateAuthenticated || h.session == nil {
		return ""
	}
	return h.session.AccessToken
}

// UserID returns the signed-in user's id, or ErrNotAuthenticated.
func (h *Holder) UserID() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state != StateAuthenticated || h.session == nil {
		return "", ErrNotAuthenticated
	}
	return h.session.User.ID, nil
}

// update applies fn under the lock and notifies subscribers afterwards.
func (h *Holder) update(fn func()) Snapshot {
	h.mu.Lock()
	fn()
	snap := h.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
	return snap
}

func (h *Holder) beginAuthenticating() {
	h.update(func() {
		h.state = StateAuthenticating
		h.loading = !h.hidden
	})
}

func (h *Holder) setUnauthenticated() Snapshot {
	return h.update(func() {
		h.state = StateUnauthenticated
		h.loading = false
		h.session = nil
		h.profile = nil
	})
}

func (h *Holder) setAuthenticated(session *supabase.Session, profile models.Profile) Snapshot {
	return h.update(func() {
		h.state = StateAuthenticated
		h.loading = false
		h.session = session
		h.profile = &profile
	})
}

// SetVisibility records whether the client is hidden. Hiding the client
// while a lookup is in flight clears the loading flag right away.
func (h *Holder) SetVisibility(hidden bool) Snapshot {
	return h.update(func() {
		h.hidden = hidden
		if hidden {
			h.loading = false
		}
	})
}

// Start restores a persisted session. The lookup is bounded by the session
// timeout; any failure leaves the holder unauthenticated.
func (h *Holder) Start(ctx context.Context) Snapshot {
	if h.auth == nil {
		h.logger.Info("Backend not configured, running without authentication")
		return h.setUnauthenticated()
	}

	h.beginAuthenticating()

	lookupCtx, cancel := context.WithTimeout(ctx, h.cfg.SessionTimeout)
	session, err := h.restore(lookupCtx)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.logger.Warn("Session lookup timed out", zap.Duration("timeout", h.cfg.SessionTimeout))
		} else {
			h.logger.Warn("Could not restore session", zap.Error(err))
		}
		return h.setUnauthenticated()
	}
	if session == nil {
		return h.setUnauthenticated()
	}

	profile := h.fetchProfile(ctx, session.User)
	h.logger.Info("Session restored", zap.String("user_id", session.User.ID))
	return h.setAuthenticated(session, profile)
}

// restore loads the persisted session, refreshes it if the access token has
// expired and verifies it against the auth service. It returns nil, nil when
// nothing was persisted.
func (h *Holder) restore(ctx context.Context) (*supabase.Session, error) {
	raw, found, err := h.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted session: %w", err)
	}
	if !found {
		return nil, nil
	}

	var session supabase.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		h.forget(ctx)
		return nil, fmt.Errorf("failed to decode persisted session: %w", err)
	}

	if expiry := expiresAt(&session); !expiry.IsZero() && !h.now().Before(expiry) {
		refreshed, err := h.auth.RefreshSession(ctx, session.RefreshToken)
		if err != nil {
			h.forget(ctx)
			return nil, err
		}
		session = *refreshed
	}

	user, err := h.auth.GetUser(ctx, session.AccessToken)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			h.forget(ctx)
		}
		return nil, err
	}
	session.User = *user

	h.persist(ctx, &session)
	return &session, nil
}

// expiresAt reads the exp claim of the access token without verifying it,
// falling back to the expires_at field of the session.
func expiresAt(session *supabase.Session) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if session.ExpiresAt > 0 {
		return time.Unix(session.ExpiresAt, 0)
	}
	return time.Time{}
}

func (h *Holder) persist(ctx context.Context, session *supabase.Session) {
	raw, err := json.Marshal(session)
	if err != nil {
		h.logger.Error("Failed to encode session", zap.Error(err))
		return
	}
	if err := h.store.Set(ctx, StorageKey, raw); err != nil {
		h.logger.Error("Failed to persist session", zap.Error(err))
	}
}

func (h *Holder) forget(ctx context.Context) {
	if err := h.store.Delete(ctx, StorageKey); err != nil {
		h.logger.Error("Failed to remove persisted session", zap.Error(err))
	}
}

// SignIn authenticates with email and password.
func (h *Holder) SignIn(ctx context.Context, email, password string) (Snapshot, error) {
	if h.auth == nil {
		return h.Snapshot(), supabase.ErrNotConfigured
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return h.Snapshot(), ErrMissingCredentials
	}

	h.beginAuthenticating()
	session, err := h.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		h.logger.Warn("Sign in failed", zap.String("email", email), zap.Error(err))
		return h.setUnauthenticated(), err
	}

	h.persist(ctx, session)
	profile := h.fetchProfile(ctx, session.User)
	return h.setAuthenticated(session, profile), nil
}

// SignUp registers an account. When the backend requires the email address
// to be confirmed first, the holder stays unauthenticated and the outcome
// reports ConfirmationRequired.
func (h *Holder) SignUp(ctx context.Context, email, password, fullName string) (SignUpOutcome, error) {
	if h.auth == nil {
		return SignUpOutcome{}, supabase.ErrNotConfigured
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SignUpOutcome{}, ErrMissingCredentials
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = models.DefaultDisplayName
	}

	h.beginAuthenticating()
	result, err := h.auth.SignUp(ctx, email, password, map[string]any{"full_name": fullName})
	if err != nil {
		h.setUnauthenticated()
		if isAlreadyRegistered(err) {
			return SignUpOutcome{}, ErrAlreadyRegistered
		}
		h.logger.Warn("Sign up failed", zap.String("email", email), zap.Error(err))
		return SignUpOutcome{}, err
	}

	if err := h.profiles.CreateProfileRPC(ctx, result.User.ID, email, fullName); err != nil {
		h.logger.Warn("Profile creation after sign up failed", zap.String("user_id", result.User.ID), zap.Error(err))
	}

	if result.Session == nil {
		h.logger.Info("Sign up requires email confirmation", zap.String("user_id", result.User.ID))
		h.setUnauthenticated()
		return SignUpOutcome{User: result.User, ConfirmationRequired: true}, nil
	}

	h.persist(ctx, result.Session)
	profile := h.fetchProfile(ctx, result.Session.User)
	h.setAuthenticated(result.Session, profile)
	return SignUpOutcome{User: result.Session.User}, nil
}

func isAlreadyRegistered(err error) bool {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "user_already_exists" || apiErr.Code == "email_exists" {
			return true
		}
		return strings.Contains(strings.ToLower(apiErr.Message), "already registered")
	}
	return false
}

// SignOut clears the session. Errors from the auth service are only logged.
func (h *Holder) SignOut(ctx context.Context) Snapshot {
	token := h.AccessToken()
	h.storeMu.Lock()
	snap := h.setUnauthenticated()
	h.forget(ctx)
	h.storeMu.Unlock()

	if h.auth != nil && token != "" {
		if err := h.auth.SignOut(ctx, token); err != nil {
			h.logger.Warn("Backend sign out failed", zap.Error(err))
		}
	}
	return snap
}

// Refresh rotates the token pair of the current session.
func (h *Holder) Refresh(ctx context.Context) error {
	h.mu.RLock()
	current := h.session
	h.mu.RUnlock()
	if h.auth == nil || current == nil {
		return ErrNotAuthenticated
	}

	refreshed, err := h.auth.RefreshSession(ctx, current.RefreshToken)
	if err != nil {
		h.logger.Warn("Session refresh failed", zap.String("user_id", current.User.ID), zap.Error(err))
		return err
	}
	if refreshed.User.ID == "" {
		refreshed.User = current.User
	}

	h.storeMu.Lock()
	defer h.storeMu.Unlock()

	var still bool
	h.update(func() {
		still = h.state == StateAuthenticated && h.session == current
		if still {
			h.session = refreshed
		}
	})
	if !still {
		h.logger.Debug("Session changed during refresh, dropping result", zap.String("user_id", current.User.ID))
		return ErrNotAuthenticated
	}

	h.persist(ctx, refreshed)
	h.logger.Debug("Session refreshed", zap.String("user_id", refreshed.User.ID))
	return nil
}

// UpdateProfile saves profile edits and replaces the cached profile.
func (h *Holder) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Profile, error) {
	userID, err := h.UserID()
	if err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	profile, err := h.profiles.UpdateProfile(ctx, userID, update)
	if err != nil {
		h.logger.Error("Failed to update profile", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	h.update(func() {
		if h.state == StateAuthenticated {
			h.profile = profile
		}
	})
	return profile, nil
}

// fetchProfile returns the stored profile, creating it on first use. It
// never fails: when the backend is slow or refuses the create, a profile
// is synthesized from the account.
func (h *Holder) fetchProfile(ctx context.Context, user models.User) models.Profile {
	fallback := models.DefaultProfile(user, h.now())

	ctx, cancel := context.WithTimeout(ctx, h.cfg.ProfileTimeout)
	defer cancel()

	profile, err := h.profiles.GetProfile(ctx, user.ID)
	if err == nil {
		return *profile
	}
	if ctx.Err() != nil {
		h.logger.Warn("Profile fetch timed out, using defaults", zap.String("user_id", user.ID))
		return fallback
	}
	if !errors.Is(err, supabase.ErrNotFound) {
		h.logger.Warn("Profile fetch failed, creating one", zap.String("user_id", user.ID), zap.Error(err))
	}

	created, err := h.profiles.CreateProfile(ctx, fallback)
	if err == nil {
		return *created
	}

	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		if existing, getErr := h.profiles.GetProfile(ctx, user.ID); getErr == nil {
			return *existing
		}
	}
	h.logger.Warn("Profile creation failed, using defaults", zap.String("user_id", user.ID), zap.Error(err))
	return fallback
}
