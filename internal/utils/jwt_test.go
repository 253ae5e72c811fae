package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	iss := NewTokenIssuer("test-secret", time.Hour)

	tok, err := iss.Issue(Claims{Subject: "alice", Role: "customer"})
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 2*time.Second)

	got, ok := iss.Verify(tok.Token)
	require.True(t, ok)
	assert.Equal(t, Claims{Subject: "alice", Role: "customer"}, got)
}

func TestTokenIssuer_TokensAreUnique(t *testing.T) {
	iss := NewTokenIssuer("test-secret", time.Hour)
	a, err := iss.Issue(Claims{Subject: "alice", Role: "customer"})
	require.NoError(t, err)
	b, err := iss.Issue(Claims{Subject: "alice", Role: "customer"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestTokenIssuer_RejectsEmptySubject(t *testing.T) {
	iss := NewTokenIssuer("test-secret", time.Hour)
	_, err := iss.Issue(Claims{Role: "customer"})
	assert.Error(t, err)
}

func TestTokenIssuer_VerifyRejects(t *testing.T) {
	iss := NewTokenIssuer("test-secret", time.Hour)
	good, err := iss.Issue(Claims{Subject: "alice", Role: "customer"})
	require.NoError(t, err)

	other := NewTokenIssuer("other-secret", time.Hour)
	foreign, err := other.Issue(Claims{Subject: "alice", Role: "customer"})
	require.NoError(t, err)

	expiredIss := NewTokenIssuer("test-secret", time.Hour)
	expiredIss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIss.Issue(Claims{Subject: "alice", Role: "customer"})
	require.NoError(t, err)

	parts := strings.Split(good.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "customer", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice", "role": "customer",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"wrong secret":   foreign.Token,
		"expired":        expired.Token,
		"tampered":       tampered,
		"alg none":       unsigned,
		"missing sub":    noSubject,
		"missing expiry": noExpiry,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := iss.Verify(raw)
			assert.False(t, ok)
		})
	}
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}
