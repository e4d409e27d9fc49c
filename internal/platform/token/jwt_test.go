package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/shared"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager("test-secret", "clinic-api", time.Hour)

	tok, err := m.Issue(42)
	require.NoError(t, err)

	id, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestManagerExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "clinic-api", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	tok, err := m.Issue(7)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(tok)
	assert.True(t, shared.HasKind(err, shared.TokenExpired))
}

func TestManagerWrongSecret(t *testing.T) {
	m := NewManager("secret-a", "clinic-api", time.Hour)
	tok, err := m.Issue(7)
	require.NoError(t, err)

	other := NewManager("secret-b", "clinic-api", time.Hour)
	_, err = other.Verify(tok)
	assert.True(t, shared.HasKind(err, shared.InvalidToken))
}

func TestManagerGarbageToken(t *testing.T) {
	m := NewManager("secret", "clinic-api", time.Hour)
	_, err := m.Verify("not-a-token")
	assert.True(t, shared.HasKind(err, shared.InvalidToken))
}
