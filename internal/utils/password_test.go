package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher{}

	d1, err := h.Hash("secret1")
	require.NoError(t, err)
	d2, err := h.Hash("secret1")
	require.NoError(t, err)

	// sha256("secret1")
	assert.Equal(t, "5b11618c2e44027877d0cd0921ed166b9f176f50587fc91e7534dd2946db77d6", d1)
	assert.Equal(t, d1, d2)
	assert.True(t, h.Verify(d1, "secret1"))
	assert.False(t, h.Verify(d1, "secret2"))
	assert.False(t, h.Verify("", "secret1"))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}

	d1, err := h.Hash("secret1")
	require.NoError(t, err)
	d2, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "bcrypt digests are salted")
	assert.True(t, h.Verify(d1, "secret1"))
	assert.True(t, h.Verify(d2, "secret1"))
	assert.False(t, h.Verify(d1, "wrong"))
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", 0)
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)

	h, err = NewHasher("BCRYPT", 10)
	require.NoError(t, err)
	assert.Equal(t, BcryptHasher{Cost: 10}, h)

	_, err = NewHasher("bcrypt", 99)
	assert.Error(t, err)

	_, err = NewHasher("md5", 0)
	assert.Error(t, err)
}
