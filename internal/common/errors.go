package common

import "errors"

var (
	// ErrNotLoggedIn is returned by operations that need a stored session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoRefreshToken means a refresh was requested without a stored refresh token.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrCorruptedData means locally stored data could not be decoded or unsealed.
	ErrCorruptedData = errors.New("corrupted local data")
)
