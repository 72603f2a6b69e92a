package pair

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no record exists for a pair ID.
var ErrNotFound = errors.New("pair not found")

// ErrRevoked is returned when a conditional update targets a pair that is
// already revoked.
var ErrRevoked = errors.New("pair revoked")

// ErrSecretMismatch is returned when the presented refresh secret hash does
// not equal the stored hash at rotation time.
var ErrSecretMismatch = errors.New("refresh secret mismatch")

// ErrCorrupt is returned when a stored blob cannot be interpreted.
var ErrCorrupt = errors.New("pair record corrupt")

// ErrRedisUnavailable wraps transport-level Redis failures. It is the fatal
// class: callers must never fold it into the request-level taxonomy.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	rotateStatusNotFound int64 = 0
	rotateStatusRevoked  int64 = 1
	rotateStatusMismatch int64 = 2
	rotateStatusRotated  int64 = 3
	rotateStatusCorrupt  int64 = 4
)

const (
	revokeStatusNotFound int64 = 0
	revokeStatusAlready  int64 = 1
	revokeStatusRevoked  int64 = 2
	revokeStatusCorrupt  int64 = 4
)

// revokePairScript flips the status byte and stamps revoked_at in place,
// preserving the remaining TTL. Idempotent: an already-revoked or missing
// pair is left untouched.
const revokePairScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 1) ~= 1 then
  return 4
end
if string.byte(data, 2) == 1 then
  return 1
end

local revoked = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3, 50) .. ARGV[1] .. string.sub(data, 59)
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], revoked, "PX", ttl)
else
  redis.call("SET", KEYS[1], revoked)
end
return 2
`

var revokePairLua = redis.NewScript(revokePairScript)

// rotatePairScript is the single conditional update behind rotation: it
// re-verifies the provided refresh hash and the active status, revokes the
// old pair, and writes the successor blob in one Redis execution, so
// concurrent rotations with the same secret have exactly one winner.
const rotatePairScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 1) ~= 1 then
  return 4
end
if string.byte(data, 2) == 1 then
  return 1
end
if string.sub(data, 3, 34) ~= ARGV[1] then
  return 2
end

local revoked = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3, 50) .. ARGV[2] .. string.sub(data, 59)
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("SET", KEYS[1], revoked, "PX", ttl)
else
  redis.call("SET", KEYS[1], revoked)
end
redis.call("SET", KEYS[2], ARGV[3], "PX", ARGV[4])
return 3
`

var rotatePairLua = redis.NewScript(rotatePairScript)

// Store is the Redis-backed pair registry.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a registry [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(pairID string) string {
	return s.prefix + ":" + pairID
}

// Create persists a new pair record with the given TTL. The TTL bounds the
// pair's retention; expiring it is the registry's housekeeping, not a
// lifecycle transition.
func (s *Store) Create(ctx context.Context, p *Pair, ttl time.Duration) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves a pair by ID. Revoked pairs are returned like active ones;
// classifying the status is the caller's concern.
func (s *Store) Get(ctx context.Context, pairID string) (*Pair, error) {
	data, err := s.redis.Get(ctx, s.key(pairID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	p, err := Decode(data)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	p.ID = pairID

	return p, nil
}

// Revoke marks a pair revoked and stamps revoked_at. Idempotent: revoking a
// missing or already-revoked pair succeeds without effect.
func (s *Store) Revoke(ctx context.Context, pairID string, now time.Time) error {
	result, err := revokePairLua.Run(
		ctx,
		s.redis,
		[]string{s.key(pairID)},
		encodeUnix(now),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid revoke script response", ErrRedisUnavailable)
	}

	switch code {
	case revokeStatusNotFound, revokeStatusAlready, revokeStatusRevoked:
		return nil
	case revokeStatusCorrupt:
		return ErrCorrupt
	default:
		return fmt.Errorf("%w: unknown revoke script status", ErrRedisUnavailable)
	}
}

// Rotate atomically revokes the pair oldID, provided its refresh hash
// still equals providedHash and it is still active, and persists next as
// its successor. Exactly one of any set of concurrent rotations presenting
// the same secret succeeds; the rest observe [ErrRevoked].
func (s *Store) Rotate(
	ctx context.Context,
	oldID string,
	providedHash [32]byte,
	next *Pair,
	ttl time.Duration,
	now time.Time,
) error {
	data, err := Encode(next)
	if err != nil {
		return err
	}

	result, err := rotatePairLua.Run(
		ctx,
		s.redis,
		[]string{s.key(oldID), s.key(next.ID)},
		providedHash[:],
		encodeUnix(now),
		data,
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusNotFound:
		return ErrNotFound
	case rotateStatusRevoked:
		return ErrRevoked
	case rotateStatusMismatch:
		return ErrSecretMismatch
	case rotateStatusRotated:
		return nil
	case rotateStatusCorrupt:
		return ErrCorrupt
	default:
		return fmt.Errorf("%w: unknown rotate script status", ErrRedisUnavailable)
	}
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func encodeUnix(t time.Time) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(t.Unix()))
	return out
}
