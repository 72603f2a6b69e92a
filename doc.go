// Package pairlock provides a credential lifecycle engine built around paired
// credentials: a short-lived signed access token and a long-lived opaque,
// single-use refresh token that share one pair identifier.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// pairlock is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, NotifyEvent, etc.). All internal coordination
// (refresh token encoding, anomaly dispatch, rate limiting) lives under
// internal/ and is never exported. The token sub-package owns the access
// token codec; the pair sub-package owns the Redis-backed pair registry.
//
// # What this package must NOT do
//
//   - Expose Redis clients, registry encoding details, or raw refresh secret
//     hashes in its public API.
//   - Return a raw refresh secret anywhere except the immediate result of
//     Issue and Refresh; the registry stores only a one-way hash.
//   - Block a Refresh caller on anomaly notification delivery.
//
// # Rotation contract
//
// Refresh is the protocol core. A refresh token is single-use: rotation
// revokes the old pair and creates its successor in one atomic registry
// operation, so concurrent refreshes presenting the same refresh token
// produce exactly one winner, and every loser observes the old pair as
// already revoked.
package pairlock
