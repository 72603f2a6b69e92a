package rate

import "errors"

var (
	// ErrRateLimited reports that the refresh attempt budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable reports a failed Redis round trip.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
