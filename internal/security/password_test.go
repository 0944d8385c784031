package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("Abcdef1!")
	require.NoError(t, err)
	second, err := h.Hash("Abcdef1!")
	require.NoError(t, err)

	assert.NotEqual(t, "Abcdef1!", first)
	assert.NotEqual(t, first, second, "salt must differ per hash")
	assert.True(t, h.Verify("Abcdef1!", first))
	assert.True(t, h.Verify("Abcdef1!", second))
	assert.False(t, h.Verify("Abcdef1?", first))
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	t.Parallel()
	h := NewHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("Abcdef1!", ""))
	assert.False(t, h.Verify("Abcdef1!", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("Abcdef1!", "$2a$10$short"))
}

func TestNewHasher_ClampsCost(t *testing.T) {
	t.Parallel()
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}

func TestNewSessionToken(t *testing.T) {
	t.Parallel()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := NewSessionToken()
		require.NoError(t, err)
		assert.Len(t, tok, 43)
		assert.NotContains(t, tok, "=")
		_, dup := seen[tok]
		assert.False(t, dup)
		seen[tok] = struct{}{}
	}
}
