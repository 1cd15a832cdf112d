package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiquest/progress-engine/internal/domain/shared"
)

type memCredentials struct {
	values map[string]string
}

func newMemCredentials() *memCredentials {
	return &memCredentials{values: make(map[string]string)}
}

func (s *memCredentials) Set(ctx context.Context, name, value string) error {
	s.values[name] = value
	return nil
}

func (s *memCredentials) Get(ctx context.Context, name string) (string, error) {
	v, ok := s.values[name]
	if !ok {
		return "", shared.ErrNotFound
	}
	return v, nil
}

func (s *memCredentials) Delete(ctx context.Context, name string) error {
	delete(s.values, name)
	return nil
}

func mintToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestToken_NoTokenStored(t *testing.T) {
	m := NewTokenManager(newMemCredentials(), nil, nil)

	_, err := m.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, m.Valid(context.Background()))
}

func TestSetToken_RoundTrip(t *testing.T) {
	m := NewTokenManager(newMemCredentials(), nil, nil)
	raw := mintToken(t, time.Now().Add(time.Hour))

	require.NoError(t, m.SetToken(context.Background(), raw))

	got, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.True(t, m.Valid(context.Background()))
}

func TestToken_ExpiredTokenRejected(t *testing.T) {
	m := NewTokenManager(newMemCredentials(), nil, nil)
	raw := mintToken(t, time.Now().Add(-time.Minute))

	require.NoError(t, m.SetToken(context.Background(), raw))

	_, err := m.Token(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestToken_SkewTreatsNearlyExpiredAsExpired(t *testing.T) {
	m := NewTokenManager(newMemCredentials(), nil, nil)
	raw := mintToken(t, time.Now().Add(10*time.Second))

	require.NoError(t, m.SetToken(context.Background(), raw))

	_, err := m.Token(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestToken_LoadsFromStoreAcrossInstances(t *testing.T) {
	store := newMemCredentials()
	raw := mintToken(t, time.Now().Add(time.Hour))

	first := NewTokenManager(store, nil, nil)
	require.NoError(t, first.SetToken(context.Background(), raw))

	second := NewTokenManager(store, nil, nil)
	got, err := second.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestSetToken_RejectsGarbage(t *testing.T) {
	m := NewTokenManager(newMemCredentials(), nil, nil)
	assert.Error(t, m.SetToken(context.Background(), "not-a-jwt"))
}

func TestClear_NotifiesInvalid(t *testing.T) {
	var last *bool
	m := NewTokenManager(newMemCredentials(), func(valid bool) { last = &valid }, nil)

	require.NoError(t, m.SetToken(context.Background(), mintToken(t, time.Now().Add(time.Hour))))
	require.NotNil(t, last)
	assert.True(t, *last)

	require.NoError(t, m.Clear(context.Background()))
	assert.False(t, *last)

	_, err := m.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}
