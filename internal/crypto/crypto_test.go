package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fastHasher keeps argon2 cheap enough for tests
func fastHasher(t *testing.T, alg Algorithm) *Hasher {
	t.Helper()
	h, err := NewHasher(alg)
	require.NoError(t, err)
	h.Memory = 1024
	h.Time = 1
	h.Threads = 1
	h.BcryptCost = bcrypt.MinCost
	return h
}

func TestHashAndVerify(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmArgon2id, AlgorithmBcrypt} {
		t.Run(string(alg), func(t *testing.T) {
			h := fastHasher(t, alg)

			encoded, err := h.Hash("password")
			require.NoError(t, err)
			assert.NotContains(t, encoded, "password")

			ok, err := Verify(encoded, "password")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = Verify(encoded, "wrongpw")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	h := fastHasher(t, AlgorithmArgon2id)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "$argon2id$v=19$m=1024,t=1,p=1$"))
}

func TestDefaultParametersRoundTrip(t *testing.T) {
	h, err := NewHasher(AlgorithmArgon2id)
	require.NoError(t, err)

	encoded, err := h.Hash("password")
	require.NoError(t, err)

	ok, err := Verify(encoded, "password")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"plain text", "password"},
		{"missing fields", "$argon2id$v=19$m=1024"},
		{"bad version", "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5"},
		{"bad bcrypt", "$2a$broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Verify(tt.encoded, "password")
			assert.ErrorIs(t, err, ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestNewHasherUnknown(t *testing.T) {
	_, err := NewHasher("md5")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
