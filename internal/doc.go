// Package internal holds non-exported primitives shared by the pairlock
// root package: refresh secret generation, hashing, and the refresh token
// transport codec.
package internal
