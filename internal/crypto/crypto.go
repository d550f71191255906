package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Argon2id parameters for password hashing
	Argon2Time    = uint32(2)
	Argon2Memory  = uint32(32768) // 32 MiB
	Argon2Threads = uint8(2)
	Argon2KeyLen  = uint32(32)

	SaltLength = 16

	argon2Prefix = "$argon2id$"
)

// Algorithm names a password hashing scheme
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")
	ErrMalformedHash    = errors.New("malformed password hash")
)

// Hasher produces and checks salted password hashes. Verification accepts
// every supported encoding regardless of which algorithm new hashes use.
type Hasher struct {
	Algorithm  Algorithm
	Time       uint32
	Memory     uint32
	Threads    uint8
	BcryptCost int
}

// NewHasher returns a hasher for alg with the default cost parameters
func NewHasher(alg Algorithm) (*Hasher, error) {
	switch alg {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	return &Hasher{
		Algorithm:  alg,
		Time:       Argon2Time,
		Memory:     Argon2Memory,
		Threads:    Argon2Threads,
		BcryptCost: bcrypt.DefaultCost,
	}, nil
}

// Hash returns an encoded salted hash of password
func (h *Hasher) Hash(password string) (string, error) {
	switch h.Algorithm {
	case AlgorithmBcrypt:
		out, err := bcrypt.GenerateFromPassword([]byte(password), h.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(out), nil
	case AlgorithmArgon2id:
		salt, err := GenerateRandomBytes(SaltLength)
		if err != nil {
			return "", err
		}
		key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, Argon2KeyLen)
		return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2Prefix,
			argon2.Version,
			h.Memory, h.Time, h.Threads,
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(key),
		), nil
	default:
		return "", ErrUnknownAlgorithm
	}
}

// Verify reports whether password matches the encoded hash
func Verify(encoded, password string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		return verifyArgon2(encoded, password)
	case strings.HasPrefix(encoded, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return true, nil
	default:
		return false, ErrMalformedHash
	}
}

func verifyArgon2(encoded, password string) (bool, error) {
	// $argon2id$v=19$m=32768,t=2,p=2$<salt>$<key>
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	stored, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(stored)))
	return subtle.ConstantTimeCompare(computed, stored) == 1, nil
}

// GenerateRandomBytes generates n random bytes
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateToken returns a URL-safe random token of n bytes of entropy
func GenerateToken(n int) (string, error) {
	b, err := GenerateRandomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
