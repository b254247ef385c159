// Package common contains shared constants and sentinel errors used across
// Lingua client packages.
package common

const (
	// AuthorizationHeader carries the bearer access token on REST calls.
	AuthorizationHeader = "Authorization"
	// RequestIDHeader correlates a client request with backend logs.
	RequestIDHeader = "X-Request-ID"
	// BearerPrefix precedes the access token in AuthorizationHeader.
	BearerPrefix = "Bearer "

	// APIVersionPrefix is prepended to every REST path.
	APIVersionPrefix = "/api/v1"
)

// Metadata keys used by the local key/value store.
const (
	MetaTokens               = "auth.tokens"
	MetaTokenSalt            = "auth.salt"
	MetaNotifiedAchievements = "achievements.notified"
)
