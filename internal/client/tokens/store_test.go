package tokens

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lingua/internal/client/models"
	"github.com/dmitrijs2005/lingua/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lingua/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return s
}

func pair(access, refresh string) models.TokenPair {
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}
}

func TestSQLiteStore_SaveLoadClear(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db, "device-secret")
	ctx := context.Background()

	p, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	access := signedToken(t, exp)
	require.NoError(t, s.Save(ctx, pair(access, "refresh-1")))

	p, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, access, p.AccessToken)
	assert.Equal(t, "refresh-1", p.RefreshToken)
	assert.True(t, p.ExpiresAt.Equal(exp))

	ok, err := Present(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Clear(ctx))
	ok, err = Present(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_SealedAtRest(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteStore(db, "device-secret").Save(ctx, pair("plain-access", "plain-refresh")))

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, common.MetaTokens)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plain-access")
	assert.NotContains(t, string(raw), "plain-refresh")

	salt, err := metadata.NewSQLiteRepository(db).Get(ctx, common.MetaTokenSalt)
	require.NoError(t, err)
	assert.Len(t, salt, 16)
}

func TestSQLiteStore_WrongSecret(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteStore(db, "secret-a").Save(ctx, pair("a", "r")))

	_, err := NewSQLiteStore(db, "secret-b").Load(ctx)
	require.ErrorIs(t, err, common.ErrCorruptedData)
}

func TestSQLiteStore_NewSaltDerivesNewKey(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	s := NewSQLiteStore(db, "device-secret")
	require.NoError(t, s.Save(ctx, pair("a1", "r1")))

	// The salt row disappears, as when the transaction that wrote it was
	// rolled back or the database was reset behind the process.
	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Clear(ctx))

	require.NoError(t, s.Save(ctx, pair("a2", "r2")))

	p, err := NewSQLiteStore(db, "device-secret").Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "a2", p.AccessToken)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, pair("a", "r")))
	p, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", p.AccessToken)
	assert.True(t, p.ExpiresAt.IsZero(), "opaque token has unknown expiry")

	p.AccessToken = "mutated"
	again, _ := s.Load(ctx)
	assert.Equal(t, "a", again.AccessToken)

	require.NoError(t, s.Clear(ctx))
	p, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestParseExpiry(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)

	assert.True(t, ParseExpiry(signedToken(t, exp)).Equal(exp))
	assert.True(t, ParseExpiry("not-a-jwt").IsZero())
	assert.True(t, ParseExpiry("").IsZero())
}
