package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into its stored form and checks a
// submitted password against that form.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(digest, plain string) bool
}

// SHA256Hasher produces the unsalted lowercase hex SHA-256 digest used by the
// existing account rows.  Identical passwords yield identical digests.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(plain string) (string, error) {
	return sha256Hex(plain), nil
}

// Verify recomputes the digest and compares in constant time.
func (SHA256Hasher) Verify(digest, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(sha256Hex(plain))) == 1
}

// BcryptHasher is the salted alternative selected with PASSWORD_HASHER=bcrypt.
type BcryptHasher struct{ Cost int }

// Hash returns bcrypt hash using the configured cost.
func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares bcrypt hash and plain password.
func (BcryptHasher) Verify(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// NewHasher picks a Hasher by name ("sha256" or "bcrypt").
func NewHasher(kind string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return BcryptHasher{Cost: bcryptCost}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", kind)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
