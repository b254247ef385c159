package models

import "time"

// TokenPair is the session credential issued on login and rotated on refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`

	// ExpiresAt is read from the access token's exp claim when it is a JWT.
	// Zero means unknown.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the access token is known to be expired at now.
func (t TokenPair) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	NativeLanguage string    `json:"nativeLanguage,omitempty"`
	TargetLanguage string    `json:"targetLanguage,omitempty"`
	Level          int       `json:"level"`
	TotalXP        int       `json:"totalXp"`
	IsPremium      bool      `json:"isPremium"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

type ProfileUpdate struct {
	Name           *string `json:"name,omitempty"`
	NativeLanguage *string `json:"nativeLanguage,omitempty"`
	TargetLanguage *string `json:"targetLanguage,omitempty"`
}
