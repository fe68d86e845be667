package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ArgonParams are the Argon2id cost parameters.
type ArgonParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgonParams follows the OWASP baseline for Argon2id.
var DefaultArgonParams = ArgonParams{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

var errBadHash = errors.New("invalid PHC hash format")

// PasswordHasher hashes and verifies passwords in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
//
// Verification reads the parameters from the stored hash, so changing the
// hasher's params only affects new hashes.
type PasswordHasher struct {
	params ArgonParams

	// dummy is verified against when the login is unknown, so the
	// response time does not reveal whether an account exists.
	dummy string
}

// NewPasswordHasher creates a hasher with the given cost parameters.
func NewPasswordHasher(params ArgonParams) (*PasswordHasher, error) {
	h := &PasswordHasher{params: params}

	dummy, err := h.Hash("jobtrack-timing-equaliser")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

// Hash returns the PHC encoding of an Argon2id hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash.
// A malformed hash is an error, not a mismatch.
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	salt, key, params, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(key))) //nolint:gosec // G115: hash length always fits uint32

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// burn spends the same work as a real verification and discards the result.
func (h *PasswordHasher) burn(password string) {
	_, _ = h.Verify(password, h.dummy) //nolint:errcheck // result intentionally unused
}

func decodePHC(encoded string) (salt, key []byte, params ArgonParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 { //nolint:mnd // PHC format has exactly 6 $-delimited parts
		return nil, nil, params, errBadHash
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}
	if len(key) == 0 {
		return nil, nil, params, errBadHash
	}

	return salt, key, params, nil
}
