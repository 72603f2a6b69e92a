package pairlock

import "context"

type networkOriginContextKey struct{}
type userAgentContextKey struct{}

// WithNetworkOrigin attaches the caller's network-layer fingerprint to ctx.
// The transport decides what the fingerprint is (forwarding header, source
// address); the engine treats it as an opaque string.
func WithNetworkOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, networkOriginContextKey{}, origin)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. The engine uses
// it as the device fingerprint for binding checks.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func networkOriginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	origin, _ := ctx.Value(networkOriginContextKey{}).(string)
	return origin
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
