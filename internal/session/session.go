// Package session persists the API access token between invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/marcus/taskops/internal/models"
)

const sessionFile = "session.json"

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrExpired     = errors.New("session expired")
)

// Credentials is the stored login state for one server
type Credentials struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Email       string    `json:"email"`
	ServerURL   string    `json:"server_url"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromToken builds credentials from an access-token response. The JWT
// payload is decoded without verification to learn the subject and expiry;
// tokens that are not JWTs are stored as-is with no expiry.
func FromToken(serverURL, email string, tok *models.Token, now time.Time) *Credentials {
	creds := &Credentials{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Email:       email,
		ServerURL:   serverURL,
		CreatedAt:   now.UTC(),
	}
	if creds.TokenType == "" {
		creds.TokenType = "bearer"
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tok.AccessToken, claims); err != nil {
		return creds
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" && creds.Email == "" {
		creds.Email = sub
	}
	switch exp := claims["exp"].(type) {
	case float64:
		creds.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	case json.Number:
		if n, err := exp.Int64(); err == nil {
			creds.ExpiresAt = time.Unix(n, 0).UTC()
		}
	}
	return creds
}

// Expired reports whether the token has a known expiry at or before now
func (c *Credentials) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// Valid reports whether the credentials hold an unexpired token
func (c *Credentials) Valid(now time.Time) bool {
	return c != nil && c.AccessToken != "" && !c.Expired(now)
}

// TokenPrefix returns a shortened token suitable for display
func (c *Credentials) TokenPrefix() string {
	if len(c.AccessToken) > 12 {
		return c.AccessToken[:12] + "..."
	}
	return c.AccessToken
}

// Store reads and writes credentials in a directory
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.Dir, sessionFile)
}

// Load returns stored credentials, or nil when no session is stored.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &creds, nil
}

// Save writes credentials with 0600 perms
func (s *Store) Save(creds *Credentials) error {
	if creds == nil || strings.TrimSpace(creds.AccessToken) == "" {
		return errors.New("save session: empty access token")
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Require returns stored credentials that are usable at now. Expired
// sessions are cleared.
func (s *Store) Require(now time.Time) (*Credentials, error) {
	creds, err := s.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	if creds.Expired(now) {
		_ = s.Clear()
		return nil, ErrExpired
	}
	return creds, nil
}
