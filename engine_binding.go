package pairlock

import (
	"context"

	"github.com/pairlock/pairlock/pair"
)

// checkDeviceBinding enforces the device dimension of the pair's binding.
// The fingerprint is the exact User-Agent string bound at issuance; any
// difference, including a missing value on either side, is a mismatch.
func (e *Engine) checkDeviceBinding(ctx context.Context, p *pair.Pair) error {
	if !e.config.Binding.EnforceUserAgent {
		return nil
	}

	if userAgentFromContext(ctx) != p.UserAgent {
		return ErrDeviceChanged
	}

	return nil
}

// networkOriginChanged reports whether the current request arrives from a
// different network origin than the pair is bound to. A change here is an
// anomaly, never a rejection.
func (e *Engine) networkOriginChanged(p *pair.Pair, origin string) bool {
	if !e.config.Binding.DetectNetworkChange {
		return false
	}

	return origin != p.NetworkOrigin
}
