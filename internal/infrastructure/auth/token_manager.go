// Package auth manages the bearer token the engine presents to the
// progress service. Tokens are issued elsewhere (the app's login flow);
// this package only stores them, inspects their expiry and reports when
// re-authentication is needed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

// ErrNoToken is returned when no token has been stored.
var ErrNoToken = errors.New("auth: no token stored")

// ErrTokenExpired is returned when the stored token is past its exp claim.
var ErrTokenExpired = errors.New("auth: token expired")

const credentialName = "bearer_token"

// expirySkew is subtracted from the exp claim so a token is treated as
// expired slightly before the server would reject it.
const expirySkew = 30 * time.Second

// CredentialStore persists the raw token across restarts.
type CredentialStore interface {
	Set(ctx context.Context, name, value string) error
	Get(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

// TokenManager caches the token in memory and keeps it durable via the
// credential store. It implements remote.TokenSource.
type TokenManager struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	loaded    bool

	store    CredentialStore
	onChange func(valid bool)
	logger   *slog.Logger
	now      func() time.Time
}

// NewTokenManager creates a manager. onChange, when non-nil, is called with
// the new validity whenever the token is set or cleared.
func NewTokenManager(store CredentialStore, onChange func(valid bool), logger *slog.Logger) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		store:    store,
		onChange: onChange,
		logger:   logger,
		now:      time.Now,
	}
}

// parseExpiry reads the exp claim without verifying the signature. The
// client is not the verifier; it only needs to know when to stop sending
// the token.
func parseExpiry(raw string, now time.Time) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("token exp claim: %w", err)
	}
	if exp == nil {
		// No exp claim: treat as long-lived.
		return now.Add(365 * 24 * time.Hour), nil
	}
	return exp.Time, nil
}

// SetToken validates, stores and activates a new token.
func (m *TokenManager) SetToken(ctx context.Context, raw string) error {
	expiresAt, err := parseExpiry(raw, m.now())
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, credentialName, raw); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = raw
	m.expiresAt = expiresAt
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("bearer token updated", slog.Time("expires_at", expiresAt))
	m.notify(m.valid())
	return nil
}

// Token returns the current token, loading it from the store on first use.
// It returns ErrNoToken or ErrTokenExpired when no usable token exists.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		raw, err := m.store.Get(ctx, credentialName)
		if errors.Is(err, shared.ErrNotFound) {
			m.loaded = true
			return "", ErrNoToken
		}
		if err != nil {
			return "", err
		}
		expiresAt, err := parseExpiry(raw, m.now())
		if err != nil {
			// A corrupt stored token is as good as no token.
			m.logger.Warn("stored token unreadable, discarding")
			m.loaded = true
			return "", ErrNoToken
		}
		m.token = raw
		m.expiresAt = expiresAt
		m.loaded = true
	}

	if m.token == "" {
		return "", ErrNoToken
	}
	if m.now().After(m.expiresAt.Add(-expirySkew)) {
		return "", ErrTokenExpired
	}
	return m.token, nil
}

// Valid reports whether a usable token is currently held.
func (m *TokenManager) Valid(ctx context.Context) bool {
	_, err := m.Token(ctx)
	return err == nil
}

// Clear drops the token, typically after the server rejected it.
func (m *TokenManager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, credentialName); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = ""
	m.expiresAt = time.Time{}
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("bearer token cleared")
	m.notify(false)
	return nil
}

func (m *TokenManager) valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.now().Before(m.expiresAt.Add(-expirySkew))
}

func (m *TokenManager) notify(valid bool) {
	if m.onChange != nil {
		m.onChange(valid)
	}
}
