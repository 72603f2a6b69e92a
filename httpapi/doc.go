// Package httpapi serves the credential lifecycle over HTTP.
//
// # Endpoints
//
//   - POST /auth/token   — issue a new pair for a user ID.
//   - GET  /auth/me      — return the user ID behind a valid access token.
//   - POST /auth/refresh — rotate the pair named by the presented tokens.
//   - POST /auth/logout  — revoke the pair behind the presented access token.
//
// # Architecture boundaries
//
// This package translates HTTP requests into Engine calls and Engine errors
// into status codes and stable error strings. All lifecycle decisions are
// delegated to the engine; the only policy here is how fingerprints are
// extracted from a request.
package httpapi
