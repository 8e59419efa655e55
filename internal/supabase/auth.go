package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"trading-journal-go/internal/models"
)

// AuthAPI is the subset of the hosted auth service the session holder needs.
type AuthAPI interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*SignUpResult, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Session is an issued token pair together with its identity.
type Session struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type,omitempty"`
	ExpiresIn    int64       `json:"expires_in,omitempty"`
	ExpiresAt    int64       `json:"expires_at,omitempty"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// SignUpResult carries the new identity. Session is nil when the
// backend requires the email address to be confirmed first.
type SignUpResult struct {
	User    models.User
	Session *Session
}

type signUpResponse struct {
	Session
	// Present at top level when no session was issued.
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (c *RestClient) tokenGrant(ctx context.Context, grantType string, body any) (*Session, error) {
	var session Session
	req := c.client.R().
		SetAuthToken(c.apiKey).
		SetQueryParam("grant_type", grantType).
		SetBody(body).
		SetResult(&session)

	if _, err := c.doRequest(ctx, http.MethodPost, authPrefix+"/token", req); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("auth service returned no access token")
	}
	return &session, nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *RestClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	session, err := c.tokenGrant(ctx, "password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}
	c.logger.Info("Signed in", zap.String("user_id", session.User.ID))
	return session, nil
}

// RefreshSession rotates the token pair.
func (c *RestClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	session, err := c.tokenGrant(ctx, "refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("session refresh failed: %w", err)
	}
	return session, nil
}

// SignUp registers a new account. metadata is stored as the account's user metadata.
func (c *RestClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*SignUpResult, error) {
	var resp signUpResponse
	req := c.client.R().
		SetAuthToken(c.apiKey).
		SetBody(map[string]any{
			"email":    email,
			"password": password,
			"data":     metadata,
		}).
		SetResult(&resp)

	if _, err := c.doRequest(ctx, http.MethodPost, authPrefix+"/signup", req); err != nil {
		return nil, fmt.Errorf("sign up failed: %w", err)
	}

	if resp.AccessToken != "" {
		session := resp.Session
		return &SignUpResult{User: session.User, Session: &session}, nil
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("sign up failed: auth service returned no user")
	}
	return &SignUpResult{User: models.User{
		ID:           resp.ID,
		Email:        resp.Email,
		CreatedAt:    resp.CreatedAt,
		UserMetadata: resp.UserMetadata,
	}}, nil
}

// GetUser resolves the identity behind an access token.
func (c *RestClient) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	var user models.User
	req := c.client.R().SetAuthToken(accessToken).SetResult(&user)
	if _, err := c.doRequest(ctx, http.MethodGet, authPrefix+"/user", req); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SignOut revokes the session behind accessToken.
func (c *RestClient) SignOut(ctx context.Context, accessToken string) error {
	req := c.client.R().SetAuthToken(accessToken)
	if _, err := c.doRequest(ctx, http.MethodPost, authPrefix+"/logout", req); err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	return nil
}
