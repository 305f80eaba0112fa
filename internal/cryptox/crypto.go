// Package cryptox contains the primitives behind credentials: single-use
// reset/activation tokens and bcrypt password hashes.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// TokenBytes is the amount of randomness behind a reset/activation token.
const TokenBytes = 64

// DefaultCost is the bcrypt cost used when the caller passes zero.
const DefaultCost = 10

var ErrWeakPassword = errors.New("password must be at least 8 characters and include uppercase, lowercase, number and special character")

// GenerateToken returns a fresh plaintext token and its digest. Only the
// digest is ever persisted.
func GenerateToken() (plain, digest string, err error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, DigestToken(plain), nil
}

// DigestToken is the one-way form of a token as stored in credentials.
func DigestToken(plain string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(plain)))
	return hex.EncodeToString(sum[:])
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// ComparePassword reports whether password matches hash. An empty hash
// (credential never activated) never matches.
func ComparePassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordStrength enforces the password policy: at least 8 characters
// with an uppercase letter, a lowercase letter, a digit and a special character.
func CheckPasswordStrength(password string) error {
	if len([]rune(password)) < 8 {
		return ErrWeakPassword
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}
