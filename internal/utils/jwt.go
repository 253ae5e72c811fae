package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 digest of issued tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"time" // expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // random token ids (jti)
)

// Claims is what a session token asserts about its holder.
type Claims struct {
	Subject string // username
	Role    string // account role at issuance
}

// IssuedToken is a signed session token along with its expiry.  Exp mirrors
// the expires_at column of the session row created for it.
type IssuedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenIssuer signs and verifies HS256 session tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens expire ttl after issuance.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to every issued token.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue builds and signs a JWT carrying sub, role, iat, exp and a random jti.
// The jti keeps tokens from two logins in the same second distinct.
func (i *TokenIssuer) Issue(c Claims) (IssuedToken, error) {
	if c.Subject == "" {
		return IssuedToken{}, errors.New("token subject required")
	}
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub":  c.Subject,
		"role": c.Role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
		"jti":  uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	// exp is carried in whole seconds inside the token; keep the same precision.
	return IssuedToken{Token: signed, Exp: time.Unix(exp.Unix(), 0).UTC()}, nil
}

// Verify checks the signature, algorithm and expiry of raw and returns the
// embedded claims.  Any failure, including a missing subject, yields false.
func (i *TokenIssuer) Verify(raw string) (Claims, bool) {
	if raw == "" {
		return Claims{}, false
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, false
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, false
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, false
	}
	role, _ := mc["role"].(string)
	return Claims{Subject: sub, Role: role}, true
}

// HashToken returns the SHA-256 hex digest of an issued token.  Session rows
// store this digest instead of the token itself.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
