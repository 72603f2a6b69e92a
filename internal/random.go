package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

const (
	// RefreshSecretSize is the entropy carried by one refresh secret.
	RefreshSecretSize = 32

	refreshTokenRawSize = 16 + RefreshSecretSize
)

// NewRefreshSecret draws a fresh opaque refresh secret.
func NewRefreshSecret() ([RefreshSecretSize]byte, error) {
	var secret [RefreshSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

// HashRefreshSecret is the one-way hash persisted in the registry in place
// of the raw secret.
func HashRefreshSecret(secret [RefreshSecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

// EncodeRefreshToken packs the pair ID and secret into the transport form:
// standard base64 over the raw pair UUID bytes followed by the secret.
func EncodeRefreshToken(pairID string, secret [RefreshSecretSize]byte) (string, error) {
	pid, err := uuid.Parse(pairID)
	if err != nil {
		return "", err
	}

	var raw [refreshTokenRawSize]byte
	copy(raw[:len(pid)], pid[:])
	copy(raw[len(pid):], secret[:])

	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// DecodeRefreshToken reverses [EncodeRefreshToken]. Every malformed input
// fails the same way; callers fold any error here into the generic pairing
// failure so the encoding is not a format-probing oracle.
func DecodeRefreshToken(token string) (string, [RefreshSecretSize]byte, error) {
	var secret [RefreshSecretSize]byte

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", secret, err
	}
	if len(raw) != refreshTokenRawSize {
		return "", secret, errors.New("invalid refresh token size")
	}

	pid, err := uuid.FromBytes(raw[:16])
	if err != nil {
		return "", secret, err
	}
	copy(secret[:], raw[16:])

	return pid.String(), secret, nil
}
