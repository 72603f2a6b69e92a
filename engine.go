package pairlock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pairlock/pairlock/internal"
	internalmetrics "github.com/pairlock/pairlock/internal/metrics"
	internalnotify "github.com/pairlock/pairlock/internal/notify"
	"github.com/pairlock/pairlock/internal/rate"
	"github.com/pairlock/pairlock/pair"
	"github.com/pairlock/pairlock/token"
)

// Engine is the credential lifecycle engine. It issues paired access and
// refresh credentials, validates access tokens, rotates pairs atomically
// and revokes them. All methods are safe for concurrent use.
type Engine struct {
	config   Config
	registry Registry
	tokens   *token.Manager
	limiter  *rate.Limiter
	notifier *internalnotify.Dispatcher
	metrics  *internalmetrics.Metrics
}

// Close stops background workers, draining any queued anomaly events first.
// The engine must not be used after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.notifier != nil {
		e.notifier.Close()
	}
}

// NotifyDropped reports how many anomaly events were discarded because the
// dispatch buffer was full.
func (e *Engine) NotifyDropped() uint64 {
	if e == nil || e.notifier == nil {
		return 0
	}
	return e.notifier.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Issue creates a fresh credential pair for userID, bound to the device and
// network fingerprints carried in ctx (see [WithUserAgent] and
// [WithNetworkOrigin]). The returned refresh token is the only copy; the
// engine keeps its hash.
func (e *Engine) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	if e == nil || e.registry == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if strings.TrimSpace(userID) == "" {
		e.metricInc(MetricIssueRejected)
		return nil, ErrEmptyUserID
	}

	secret, err := internal.NewRefreshSecret()
	if err != nil {
		e.metricInc(MetricIssueRejected)
		return nil, err
	}

	now := time.Now()
	p := &pair.Pair{
		ID:            pair.NewID(),
		UserID:        userID,
		Status:        pair.StatusActive,
		RefreshHash:   internal.HashRefreshSecret(secret),
		UserAgent:     userAgentFromContext(ctx),
		NetworkOrigin: networkOriginFromContext(ctx),
		CreatedAt:     now.Unix(),
	}

	accessToken, err := e.tokens.CreateAccess(userID, p.ID)
	if err != nil {
		e.metricInc(MetricIssueRejected)
		return nil, err
	}

	refreshToken, err := internal.EncodeRefreshToken(p.ID, secret)
	if err != nil {
		e.metricInc(MetricIssueRejected)
		return nil, err
	}

	if err := e.registry.Create(ctx, p, e.config.Token.RefreshTTL); err != nil {
		e.metricInc(MetricIssueRejected)
		return nil, err
	}

	e.metricInc(MetricIssueSuccess)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Validate verifies accessToken cryptographically and against the registry.
// A token whose pair was revoked or has expired out of the registry fails
// with [ErrTokenRevoked]; every structural or signature problem, including
// expiry of the token itself, fails with [ErrTokenInvalid].
func (e *Engine) Validate(ctx context.Context, accessToken string) (*AuthResult, error) {
	if e == nil || e.registry == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if accessToken == "" {
		e.metricInc(MetricValidateFailure)
		return nil, ErrAuthRequired
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		return nil, ErrTokenInvalid
	}

	p, err := e.registry.Get(ctx, claims.PID)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		if errors.Is(err, pair.ErrNotFound) {
			// An expired registry record and an explicit revocation are
			// indistinguishable to the caller on purpose.
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if p.Status != pair.StatusActive || p.UserID != claims.UID {
		e.metricInc(MetricValidateFailure)
		return nil, ErrTokenRevoked
	}

	return &AuthResult{
		UserID: claims.UID,
		PairID: claims.PID,
	}, nil
}

// Logout revokes the pair behind accessToken. Revoking an already-revoked
// or expired pair succeeds; logout is idempotent. The access token must
// still verify, expired tokens included, so a client can always terminate
// its own pair.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	if e == nil || e.registry == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	if accessToken == "" {
		return ErrAuthRequired
	}

	claims, err := e.tokens.ParseAccessAllowExpired(accessToken)
	if err != nil {
		return ErrTokenInvalid
	}

	if err := e.registry.Revoke(ctx, claims.PID, time.Now()); err != nil {
		return err
	}

	e.metricInc(MetricLogout)

	return nil
}
