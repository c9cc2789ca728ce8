// Package session holds the credential a dashboard user obtained from the flight
// API. A Session is passed explicitly to every API call; nothing reads the token
// from shared state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thanhpk/randstr"

	"github.com/dharmasatrya/flightops/internal/models"
)

// CookieName is the well-known key the session id is stored under in the browser.
const CookieName = "flightops_session"

var ErrNoSession = errors.New("session: no active session")

type Session struct {
	ID           string    `json:"id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Username     string    `json:"username"`
	UserID       string    `json:"user_id,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Valid reports whether the session carries a token to send.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}

type Manager struct {
	store  Store
	logger *slog.Logger
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// Begin starts a session for the credentials returned by login or register.
func (m *Manager) Begin(ctx context.Context, username string, auth models.AuthResponse) (*Session, error) {
	if auth.Tokens.Access == "" {
		return nil, models.ErrMissingAccessToken
	}

	s := &Session{
		ID:           randstr.Hex(64),
		Token:        auth.Tokens.Access,
		RefreshToken: auth.Tokens.Refresh,
		Username:     username,
		CreatedAt:    time.Now(),
	}
	if auth.User != nil {
		if auth.User.Username != "" {
			s.Username = auth.User.Username
		}
		s.UserID = strconv.Itoa(auth.User.ID)
	}
	readClaims(s)

	if err := m.store.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	m.logger.Info("session started", slog.String("user", s.Username))
	return s, nil
}

func (m *Manager) Lookup(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	s, found := m.store.Get(ctx, id)
	if !found || !s.Valid() {
		return nil, ErrNoSession
	}
	return s, nil
}

// End discards the session. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string, reason string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	m.logger.Info("session ended", slog.String("reason", reason))
	return nil
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// readClaims copies display-only claims out of a JWT access token. The signature
// is not checked here: the API is the authority on whether the token is valid.
func readClaims(s *Session) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if s.UserID == "" {
		switch v := claims["user_id"].(type) {
		case string:
			s.UserID = v
		case float64:
			s.UserID = strconv.FormatInt(int64(v), 10)
		}
	}
}
