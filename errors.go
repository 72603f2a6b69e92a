package pairlock

import "errors"

var (
	// ErrAuthRequired reports that no access token was supplied at all.
	// The engine never produces it from a decoded token; it exists for the
	// transport layer, which must keep "no Authorization header" distinct
	// from a malformed one.
	ErrAuthRequired = errors.New("authorization required")
	// ErrTokenInvalid reports an access token that fails structural or
	// cryptographic verification, or whose expiry has passed.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked reports a structurally valid, correctly paired token
	// whose pair has been revoked by logout or rotation.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrIncorrectPair reports a refresh token that is malformed, references
	// an unknown pair, or does not match the access token's pair. It is
	// always reported before revocation state so that pairing probes cannot
	// learn whether an unrelated pair exists or is revoked.
	ErrIncorrectPair = errors.New("incorrect tokens pair")
	// ErrDeviceChanged reports a refresh whose device fingerprint differs
	// from the pair's binding. The refresh is rejected and no state changes.
	ErrDeviceChanged = errors.New("device fingerprint changed")
	// ErrEmptyUserID reports an issuance request with a missing or empty
	// user identifier. It is a validation failure, not an auth failure.
	ErrEmptyUserID = errors.New("empty user id")
	// ErrRefreshRateLimited reports that the per-pair refresh throttle
	// rejected the attempt.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrEngineNotReady is returned when an Engine method is called on an
	// engine that was not produced by [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
)
