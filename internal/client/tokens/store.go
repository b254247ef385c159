// Package tokens persists the session token pair.
//
// The pair is sealed with AES-GCM before it reaches the metadata table. The
// key is derived from the configured storage secret and a random per-device
// salt kept next to it, so a copied database alone does not leak the
// session.
package tokens

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lingua/internal/common"
	"github.com/dmitrijs2005/lingua/internal/cryptox"
	"github.com/dmitrijs2005/lingua/internal/dbx"
)

// Store is the token persistence contract used by the API client and the
// auth service. Load returns (nil, nil) when no session is stored.
type Store interface {
	Load(ctx context.Context) (*models.TokenPair, error)
	Save(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the sealed pair in the metadata table.
type SQLiteStore struct {
	db     *sql.DB
	secret []byte

	mu      sync.Mutex
	key     []byte
	keySalt []byte
}

func NewSQLiteStore(db *sql.DB, secret string) *SQLiteStore {
	return &SQLiteStore{db: db, secret: []byte(secret)}
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.TokenPair, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	sealed, err := repo.Get(ctx, common.MetaTokens)
	if err != nil {
		return nil, err
	}
	if sealed == nil {
		return nil, nil
	}

	salt, err := repo.Get(ctx, common.MetaTokenSalt)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		return nil, fmt.Errorf("token salt missing: %w", common.ErrCorruptedData)
	}

	var pair models.TokenPair
	if err := cryptox.Open(sealed, s.deriveKey(salt), &pair); err != nil {
		return nil, fmt.Errorf("unseal tokens: %w: %v", common.ErrCorruptedData, err)
	}
	return &pair, nil
}

// Save stores pair, filling ExpiresAt from the access token when it is a JWT.
func (s *SQLiteStore) Save(ctx context.Context, pair models.TokenPair) error {
	if pair.ExpiresAt.IsZero() {
		pair.ExpiresAt = ParseExpiry(pair.AccessToken)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		salt, err := repo.Get(ctx, common.MetaTokenSalt)
		if err != nil {
			return err
		}
		if salt == nil {
			salt = common.GenerateRandByteArray(cryptox.SaltSize)
			if err := repo.Set(ctx, common.MetaTokenSalt, salt); err != nil {
				return err
			}
		}

		sealed, err := cryptox.Seal(pair, s.deriveKey(salt))
		if err != nil {
			return fmt.Errorf("seal tokens: %w", err)
		}
		return repo.Set(ctx, common.MetaTokens, sealed)
	})
}

// Clear drops the stored pair. The salt stays so the next login reuses it.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, common.MetaTokens)
}

// deriveKey memoizes the key for the last salt seen.
func (s *SQLiteStore) deriveKey(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil || !bytes.Equal(s.keySalt, salt) {
		s.key = cryptox.DeriveKey(s.secret, salt)
		s.keySalt = bytes.Clone(salt)
	}
	return s.key
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	pair *models.TokenPair
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (*models.TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return nil, nil
	}
	p := *m.pair
	return &p, nil
}

func (m *MemoryStore) Save(_ context.Context, pair models.TokenPair) error {
	if pair.ExpiresAt.IsZero() {
		pair.ExpiresAt = ParseExpiry(pair.AccessToken)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = &pair
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = nil
	return nil
}

// ParseExpiry reads the exp claim from a JWT without verifying its
// signature. The signature is the backend's business; the client only wants
// to know when to stop sending the token. Non-JWT tokens yield zero.
func ParseExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Present reports whether a session is stored.
func Present(ctx context.Context, s Store) (bool, error) {
	p, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return p != nil && p.AccessToken != "", nil
}
