package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUndecodable is returned by GetJSON when the stored bytes do not decode
// into the requested type.
var ErrUndecodable = errors.New("undecodable metadata value")

// GetJSON reads key and decodes it into a T. found is false when the key is
// absent.
func GetJSON[T any](ctx context.Context, r Repository, key string) (v T, found bool, err error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("%w: metadata[%s]: %v", ErrUndecodable, key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON[T any](ctx context.Context, r Repository, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode metadata[%s]: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}
