package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	tests := []struct {
		name  string
		plain string
	}{
		{"typical password", "Abc12345!"},
		{"long password", "Correct-Horse-Battery-Staple-99!"},
	}

	hasher := NewPasswordHasher(4) // low cost keeps the test fast
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.plain)
			require.NoError(t, err)

			// The stored value must never equal the plaintext.
			assert.NotEqual(t, tt.plain, hash)

			assert.True(t, hasher.Verify(tt.plain, hash))
			assert.False(t, hasher.Verify(tt.plain+"x", hash))
		})
	}
}

func TestHashIsRandomized(t *testing.T) {
	hasher := NewPasswordHasher(4)

	first, err := hasher.Hash("Abc12345!")
	require.NoError(t, err)
	second, err := hasher.Hash("Abc12345!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("Abc12345!", first))
	assert.True(t, hasher.Verify("Abc12345!", second))
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, 10, NewPasswordHasher(0).cost)
	assert.Equal(t, 10, NewPasswordHasher(99).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(4)
	assert.False(t, hasher.Verify("Abc12345!", "not-a-bcrypt-hash"))
}
