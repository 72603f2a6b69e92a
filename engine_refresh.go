package pairlock

import (
	"context"
	"errors"
	"time"

	"github.com/pairlock/pairlock/internal"
	"github.com/pairlock/pairlock/internal/rate"
	"github.com/pairlock/pairlock/pair"
)

// Refresh rotates the credential pair named by the two presented tokens.
//
// The access token must be authentic but may be expired; the refresh token
// must decode, belong to the same pair, and carry the secret whose hash the
// registry holds. Any failure of those pairing checks reports
// [ErrIncorrectPair] before revocation state is consulted, so a caller
// probing with mismatched tokens learns nothing about whether the
// referenced pair exists or has been revoked.
//
// A correctly paired but already-consumed refresh token reports
// [ErrTokenRevoked]. A device fingerprint mismatch reports
// [ErrDeviceChanged] and leaves the pair untouched. A network origin change
// alone is tolerated: the rotation proceeds, the successor pair binds the
// new origin, and one anomaly notification is emitted.
//
// Rotation is atomic. Of any number of concurrent Refresh calls presenting
// the same refresh token, exactly one receives the successor pair; the rest
// fail with [ErrTokenRevoked].
func (e *Engine) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if e == nil || e.registry == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if accessToken == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrAuthRequired
	}

	claims, err := e.tokens.ParseAccessAllowExpired(accessToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrTokenInvalid
	}

	pairID, secret, err := internal.DecodeRefreshToken(refreshToken)
	if err != nil || pairID != claims.PID {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrIncorrectPair
	}

	if e.limiter != nil {
		if err := e.limiter.CheckRefresh(ctx, pairID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricRefreshRateLimited)
				return nil, ErrRefreshRateLimited
			}
			return nil, err
		}
	}

	providedHash := internal.HashRefreshSecret(secret)

	p, err := e.registry.Get(ctx, pairID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if errors.Is(err, pair.ErrNotFound) {
			return nil, ErrIncorrectPair
		}
		return nil, err
	}

	// Pairing checks outrank revocation state.
	if p.UserID != claims.UID || !p.SecretMatches(providedHash) {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrIncorrectPair
	}

	if p.Status != pair.StatusActive {
		e.metricInc(MetricRefreshReplayBlocked)
		return nil, ErrTokenRevoked
	}

	if err := e.checkDeviceBinding(ctx, p); err != nil {
		e.metricInc(MetricDeviceRejected)
		return nil, err
	}

	origin := networkOriginFromContext(ctx)
	originChanged := e.networkOriginChanged(p, origin)

	nextSecret, err := internal.NewRefreshSecret()
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	now := time.Now()
	next := &pair.Pair{
		ID:            pair.NewID(),
		UserID:        p.UserID,
		Status:        pair.StatusActive,
		RefreshHash:   internal.HashRefreshSecret(nextSecret),
		UserAgent:     p.UserAgent,
		NetworkOrigin: p.NetworkOrigin,
		CreatedAt:     now.Unix(),
		RotatedAt:     now.Unix(),
	}
	if originChanged {
		// The successor follows the client to its new network.
		next.NetworkOrigin = origin
	}

	accessNext, err := e.tokens.CreateAccess(next.UserID, next.ID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	refreshNext, err := internal.EncodeRefreshToken(next.ID, nextSecret)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	err = e.registry.Rotate(ctx, p.ID, providedHash, next, e.config.Token.RefreshTTL, now)
	if err != nil {
		switch {
		case errors.Is(err, pair.ErrRevoked):
			// A concurrent rotation won the race and consumed the pair.
			e.metricInc(MetricRefreshReplayBlocked)
			return nil, ErrTokenRevoked
		case errors.Is(err, pair.ErrNotFound), errors.Is(err, pair.ErrSecretMismatch):
			e.metricInc(MetricRefreshFailure)
			return nil, ErrIncorrectPair
		default:
			e.metricInc(MetricRefreshFailure)
			return nil, err
		}
	}

	if originChanged {
		e.metricInc(MetricNetworkAnomaly)
		e.emitNetworkOriginChanged(ctx, p, next, origin)
	}

	e.metricInc(MetricRefreshSuccess)

	return &TokenPair{
		AccessToken:  accessNext,
		RefreshToken: refreshNext,
	}, nil
}
