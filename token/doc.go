// Package token implements the access token codec: a signed, self-describing
// token carrying the owning user ID, the pair ID, and an expiry.
//
// The codec is pure: a function of its input and the signing key. Validity
// of an access token is only half the story: the referenced pair must also
// be active, which is the engine's concern, not this package's.
package token
