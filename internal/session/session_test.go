package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigdealegypt/bigdeal/internal/db"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{"jwt with exp", signedToken(t, jwt.MapClaims{"sub": "u-1", "exp": exp.Unix()}), exp},
		{"jwt without exp", signedToken(t, jwt.MapClaims{"sub": "u-1"}), time.Time{}},
		{"opaque token", "not-a-jwt", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenExpiry(tt.token)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestSessionNormalize(t *testing.T) {
	exp := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{AccessToken: signedToken(t, jwt.MapClaims{"exp": exp.Unix()})}
	require.NoError(t, s.normalize())
	assert.True(t, s.ExpiresAt.Equal(exp))

	empty := &Session{}
	assert.Error(t, empty.normalize())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
	assert.Equal(t, time.Minute, (&Session{ExpiresAt: now.Add(time.Minute)}).Until(now))
}

func TestSQLiteStore(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "bde.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	a := NewSQLiteStore(d, "https://api.bigdealegypt.com")
	b := NewSQLiteStore(d, "http://localhost:3000")

	tok, err := a.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, a.Save("tok-1", time.Now().Add(time.Hour)))
	require.NoError(t, a.Save("tok-2", time.Time{}))
	require.NoError(t, b.Save("other", time.Time{}))

	tok, err = a.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)

	require.NoError(t, a.Clear())
	tok, err = a.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = b.Load()
	require.NoError(t, err)
	assert.Equal(t, "other", tok)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("seed")
	tok, _ := s.Load()
	assert.Equal(t, "seed", tok)

	require.NoError(t, s.Save("next", time.Time{}))
	tok, _ = s.Load()
	assert.Equal(t, "next", tok)

	require.NoError(t, s.Clear())
	tok, _ = s.Load()
	assert.Empty(t, tok)
}
