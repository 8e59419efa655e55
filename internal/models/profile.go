package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDisplayName is used when an account has no full name.
const DefaultDisplayName = "User"

// ExperienceLevel is the self-declared trading experience of a user.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceProfessional ExperienceLevel = "professional"
)

// Valid reports whether l is one of the known levels.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceProfessional:
		return true
	}
	return false
}

// Profile is the user_profiles row associated with an identity.
type Profile struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	FullName        string          `json:"full_name"`
	Bio             string          `json:"bio,omitempty"`
	TradingStyle    string          `json:"trading_style,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProfileUpdate holds the editable profile fields; nil fields are left untouched.
type ProfileUpdate struct {
	FullName        *string          `json:"full_name,omitempty"`
	Bio             *string          `json:"bio,omitempty"`
	TradingStyle    *string          `json:"trading_style,omitempty"`
	ExperienceLevel *ExperienceLevel `json:"experience_level,omitempty"`
}

// Validate rejects unknown experience levels and blank names.
func (u ProfileUpdate) Validate() error {
	if u.FullName != nil && strings.TrimSpace(*u.FullName) == "" {
		return fmt.Errorf("full_name must not be empty")
	}
	if u.ExperienceLevel != nil && !u.ExperienceLevel.Valid() {
		return fmt.Errorf("unknown experience_level %q", *u.ExperienceLevel)
	}
	return nil
}

// User is an authenticated identity as reported by the auth service.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// DisplayName returns the full name from the account metadata, or DefaultDisplayName.
func (u User) DisplayName() string {
	if name, ok := u.UserMetadata["full_name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	return DefaultDisplayName
}

// DefaultProfile builds the profile created for an identity that has none yet.
func DefaultProfile(u User, now time.Time) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.DisplayName(),
		CreatedAt: now.UTC(),
	}
}
