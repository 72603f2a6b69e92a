// Package middleware exposes an HTTP middleware adapter built on top of
// pairlock.Engine validation.
//
// [Guard] reads the Authorization header, calls Engine.Validate, and injects
// the validated identity into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement credential logic itself.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make decisions beyond pass/reject from Engine.Validate.
package middleware
