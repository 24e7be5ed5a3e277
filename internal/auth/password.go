// Package auth hashes passwords and issues signed session tokens.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	legacyPrefix     = "pbkdf2:sha256"
	legacyIterations = 260000
)

// ErrMalformedHash is returned for stored hashes in an unknown format.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword returns a salted bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored hash. Both bcrypt
// hashes and imported "pbkdf2:sha256[:iterations]$salt$hex" hashes are accepted.
func CheckPassword(hash, plain string) (bool, error) {
	if strings.HasPrefix(hash, legacyPrefix) {
		return checkLegacy(hash, plain)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// NeedsRehash reports whether hash should be replaced by a bcrypt hash.
func NeedsRehash(hash string) bool {
	return strings.HasPrefix(hash, legacyPrefix)
}

func checkLegacy(hash, plain string) (bool, error) {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return false, ErrMalformedHash
	}
	method, salt, expected := parts[0], parts[1], parts[2]

	iterations := legacyIterations
	if rest := strings.TrimPrefix(method, legacyPrefix); rest != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(rest, ":"))
		if err != nil || n <= 0 {
			return false, ErrMalformedHash
		}
		iterations = n
	}

	want, err := hex.DecodeString(expected)
	if err != nil {
		return false, ErrMalformedHash
	}
	got := pbkdf2.Key([]byte(plain), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
