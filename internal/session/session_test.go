package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/marcus/taskops/internal/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestFromTokenDecodesClaims(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	exp := now.Add(30 * time.Minute)
	raw := signedToken(t, jwt.MapClaims{"sub": "ops@example.com", "exp": exp.Unix()})

	creds := FromToken("http://api", "", &models.Token{AccessToken: raw, TokenType: "bearer"}, now)

	if creds.Email != "ops@example.com" {
		t.Errorf("Email = %q, want subject from token", creds.Email)
	}
	if !creds.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", creds.ExpiresAt, exp)
	}
	if creds.ServerURL != "http://api" {
		t.Errorf("ServerURL = %q", creds.ServerURL)
	}
	if !creds.Valid(now) {
		t.Error("expected credentials to be valid before expiry")
	}
	if !creds.Expired(exp) {
		t.Error("expected credentials to be expired at exp")
	}
}

func TestFromTokenPrefersGivenEmail(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "from-token@example.com"})
	creds := FromToken("", "typed@example.com", &models.Token{AccessToken: raw}, time.Now())
	if creds.Email != "typed@example.com" {
		t.Errorf("Email = %q", creds.Email)
	}
	if creds.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want default bearer", creds.TokenType)
	}
}

func TestFromTokenOpaque(t *testing.T) {
	creds := FromToken("", "a@b.co", &models.Token{AccessToken: "opaque-token"}, time.Now())
	if !creds.ExpiresAt.IsZero() {
		t.Errorf("opaque token should have no expiry, got %v", creds.ExpiresAt)
	}
	if creds.Expired(time.Now().Add(1000 * time.Hour)) {
		t.Error("token with no expiry should never be expired")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	creds, err := store.Load()
	if err != nil || creds != nil {
		t.Fatalf("Load on empty store = %v, %v; want nil, nil", creds, err)
	}

	want := &Credentials{AccessToken: "abc", TokenType: "bearer", Email: "a@b.co"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(store.Dir, "session.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != "abc" || got.Email != "a@b.co" {
		t.Errorf("Load = %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear should be a no-op: %v", err)
	}
	if got, _ := store.Load(); got != nil {
		t.Errorf("Load after Clear = %+v, want nil", got)
	}
}

func TestStoreSaveRejectsEmptyToken(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(&Credentials{AccessToken: "  "}); err == nil {
		t.Error("expected error saving empty token")
	}
	if err := store.Save(nil); err == nil {
		t.Error("expected error saving nil credentials")
	}
}

func TestStoreRequire(t *testing.T) {
	now := time.Now()
	store := NewStore(t.TempDir())

	if _, err := store.Require(now); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Require on empty store: got %v, want ErrNotLoggedIn", err)
	}

	if err := store.Save(&Credentials{AccessToken: "tok", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	creds, err := store.Require(now)
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if creds.AccessToken != "tok" {
		t.Errorf("AccessToken = %q", creds.AccessToken)
	}

	if _, err := store.Require(now.Add(2 * time.Hour)); !errors.Is(err, ErrExpired) {
		t.Fatalf("Require after expiry: got %v, want ErrExpired", err)
	}
	if got, _ := store.Load(); got != nil {
		t.Error("expired session should be cleared")
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.WriteFile(filepath.Join(store.Dir, "session.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestTokenPrefix(t *testing.T) {
	c := &Credentials{AccessToken: "abcdefghijklmnop"}
	if got := c.TokenPrefix(); got != "abcdefghijkl..." {
		t.Errorf("TokenPrefix = %q", got)
	}
	c.AccessToken = "short"
	if got := c.TokenPrefix(); got != "short" {
		t.Errorf("TokenPrefix = %q", got)
	}
}
