// Package pair implements the authoritative pair registry: Redis-backed
// persistence for the lifecycle state of access/refresh credential pairs.
//
// A pair record is encoded as a versioned binary blob with a fixed-width
// header (status, refresh secret hash, timestamps) so that the Lua scripts
// driving revocation and rotation can inspect and rewrite lifecycle state
// without a round trip. Rotation and revocation are per-pair conditional
// updates; the store never takes a lock that spans unrelated pairs.
//
// Revoked pairs are deliberately retained under their remaining TTL rather
// than deleted, so that post-revocation use of a refresh token can be
// classified as "revoked" instead of "not found".
package pair
