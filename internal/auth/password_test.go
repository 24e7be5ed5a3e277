package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func legacyHash(plain, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(plain), []byte(salt), iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("%s:%d$%s$%s", legacyPrefix, iterations, salt, hex.EncodeToString(key))
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("same")
	require.NoError(t, err)
	second, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCheckPassword_Legacy(t *testing.T) {
	withIterations := legacyHash("hunter2", "Ab12Cd34", 1000)
	key := pbkdf2.Key([]byte("hunter2"), []byte("Ab12Cd34"), legacyIterations, sha256.Size, sha256.New)
	defaultIterations := "pbkdf2:sha256$Ab12Cd34$" + hex.EncodeToString(key)

	tests := []struct {
		name    string
		hash    string
		plain   string
		want    bool
		wantErr bool
	}{
		{"Explicit iterations match", withIterations, "hunter2", true, false},
		{"Explicit iterations mismatch", withIterations, "hunter3", false, false},
		{"Default iterations match", defaultIterations, "hunter2", true, false},
		{"Missing parts", "pbkdf2:sha256:1000$salt", "x", false, true},
		{"Bad iteration count", "pbkdf2:sha256:abc$salt$00", "x", false, true},
		{"Bad hex", "pbkdf2:sha256:1000$salt$zz", "x", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CheckPassword(tt.hash, tt.plain)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedHash)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	bcryptHash, err := HashPassword("pw")
	require.NoError(t, err)

	assert.False(t, NeedsRehash(bcryptHash))
	assert.True(t, NeedsRehash(legacyHash("pw", "salt", 10)))
}
