package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentReferenceFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^PAY_[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := GeneratePaymentReference()
		assert.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	// 4 random bytes; 100 draws colliding would mean the RNG is broken
	assert.Greater(t, len(seen), 95)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same input")
	require.NoError(t, err)
	h2, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("same input", h1))
	assert.True(t, VerifyPassword("same input", h2))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "no-dollar-separator"))
	assert.False(t, VerifyPassword("anything", "!!!$???"))
}
