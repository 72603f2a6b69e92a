package pair

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a pair. Transitions are monotonic:
// active pairs become revoked, never the reverse.
type Status uint8

const (
	// StatusActive marks a pair whose refresh secret may still be consumed.
	StatusActive Status = 0
	// StatusRevoked marks a pair terminated by logout or rotation.
	StatusRevoked Status = 1
)

// Pair is the unit of session state: one access token and one refresh
// secret sharing a pair identifier. The raw refresh secret is never stored;
// RefreshHash is its one-way hash.
type Pair struct {
	ID            string
	UserID        string
	Status        Status
	RefreshHash   [32]byte
	UserAgent     string
	NetworkOrigin string

	CreatedAt int64
	RotatedAt int64
	RevokedAt int64
}

// NewID allocates a fresh globally unique pair identifier.
func NewID() string {
	return uuid.NewString()
}

// SecretMatches reports whether the hash of a presented refresh secret
// equals the stored hash, in constant time.
func (p *Pair) SecretMatches(hash [32]byte) bool {
	return subtle.ConstantTimeCompare(p.RefreshHash[:], hash[:]) == 1
}
