package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightops/internal/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-api-secret"))
	require.NoError(t, err)
	return token
}

func TestBeginStoresSessionAndReadsClaims(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Hour), nil)
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	access := signedToken(t, jwt.MapClaims{"user_id": 42, "exp": exp.Unix(), "token_type": "access"})
	s, err := m.Begin(ctx, "alice", models.AuthResponse{Tokens: models.Tokens{Access: access, Refresh: "r"}})
	require.NoError(t, err)

	assert.Len(t, s.ID, 64)
	assert.Equal(t, access, s.Token)
	assert.Equal(t, "r", s.RefreshToken)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "42", s.UserID)
	assert.True(t, exp.Equal(s.ExpiresAt))

	found, err := m.Lookup(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Token, found.Token)
}

func TestBeginAcceptsOpaqueTokens(t *testing.T) {
	m := NewManager(NewMemoryStore(0), nil)

	s, err := m.Begin(context.Background(), "bob", models.AuthResponse{
		Tokens: models.Tokens{Access: "opaque"},
		User:   &models.User{ID: 7, Username: "bobby"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bobby", s.Username)
	assert.Equal(t, "7", s.UserID)
	assert.True(t, s.ExpiresAt.IsZero())
}

func TestBeginRequiresAccessToken(t *testing.T) {
	m := NewManager(NewMemoryStore(0), nil)

	_, err := m.Begin(context.Background(), "carol", models.AuthResponse{})
	assert.ErrorIs(t, err, models.ErrMissingAccessToken)
}

func TestEndDiscardsSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(0), nil)

	s, err := m.Begin(ctx, "dave", models.AuthResponse{Tokens: models.Tokens{Access: "tok"}})
	require.NoError(t, err)

	require.NoError(t, m.End(ctx, s.ID, "logout"))
	_, err = m.Lookup(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, m.End(ctx, "", "logout"))
	_, err = m.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, &Session{ID: "a", Token: "t"}))

	_, ok := store.Get(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryStoreSweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, &Session{ID: "abandoned", Token: "t"}))
	require.NoError(t, store.Set(ctx, &Session{ID: "kept", Token: "t"}))

	now = now.Add(30 * time.Second)
	require.NoError(t, store.Set(ctx, &Session{ID: "kept", Token: "t"}))

	now = now.Add(45 * time.Second)
	require.NoError(t, store.Set(ctx, &Session{ID: "new", Token: "t"}))

	assert.Len(t, store.sessions, 2)
	assert.NotContains(t, store.sessions, "abandoned")
	assert.Contains(t, store.sessions, "kept")
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Set(ctx, &Session{ID: "a", Token: "t"}))

	s, _ := store.Get(ctx, "a")
	s.Token = "changed"

	again, _ := store.Get(ctx, "a")
	assert.Equal(t, "t", again.Token)
}
