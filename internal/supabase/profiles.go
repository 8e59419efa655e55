package supabase

import (
	"context"
	"fmt"
	"net/http"

	"trading-journal-go/internal/models"
)

// ProfileTable is the typed access to the remote user_profiles table.
type ProfileTable interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error)
	CreateProfileRPC(ctx context.Context, userID, email, fullName string) error
}

// GetProfile returns ErrNotFound when the identity has no profile row yet.
func (c *RestClient) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var rows []models.Profile
	req := c.newRequest().
		SetQueryParams(map[string]string{"select": "*", "id": eq(id)}).
		SetResult(&rows)

	if _, err := c.doRequest(ctx, http.MethodGet, profilesPath, req); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (c *RestClient) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	var rows []models.Profile
	req := c.newRequest().
		SetHeader("Prefer", "return=representation").
		SetBody([]models.Profile{profile}).
		SetResult(&rows)

	if _, err := c.doRequest(ctx, http.MethodPost, profilesPath, req); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to create profile: backend returned no row")
	}
	return &rows[0], nil
}

func (c *RestClient) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error) {
	var rows []models.Profile
	req := c.newRequest().
		SetQueryParam("id", eq(id)).
		SetHeader("Prefer", "return=representation").
		SetBody(update).
		SetResult(&rows)

	if _, err := c.doRequest(ctx, http.MethodPatch, profilesPath, req); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to update profile: %w", ErrNotFound)
	}
	return &rows[0], nil
}

// CreateProfileRPC calls the server-side profile function used right after sign-up,
// which works before the new identity can pass row-level security.
func (c *RestClient) CreateProfileRPC(ctx context.Context, userID, email, fullName string) error {
	req := c.newRequest().SetBody(map[string]string{
		"user_id":        userID,
		"user_email":     email,
		"user_full_name": fullName,
	})
	if _, err := c.doRequest(ctx, http.MethodPost, profileRPC, req); err != nil {
		return fmt.Errorf("failed to create profile via rpc: %w", err)
	}
	return nil
}
