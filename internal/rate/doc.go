// Package rate provides the Redis-backed refresh throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefix pr: keyed by pair ID.
//
// # What this package must NOT do
//
//   - Implement pair lifecycle decisions (those live in the root package).
//   - Be imported outside this module.
package rate
