// Package metrics provides lock-free counters for engine observability.
//
// Counters live in cache-line-padded uint64 slots and are incremented
// atomically. The package owns storage and snapshot creation only; it
// performs no I/O and imports no sibling package.
package metrics
