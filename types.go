package pairlock

import (
	"context"
	"io"
	"time"

	internalmetrics "github.com/pairlock/pairlock/internal/metrics"
	internalnotify "github.com/pairlock/pairlock/internal/notify"
	"github.com/pairlock/pairlock/pair"
)

// TokenPair is the issuance result returned by [Engine.Issue] and
// [Engine.Refresh]: the signed access token and the transport-encoded opaque
// refresh token. The refresh token is shown exactly once; the engine retains
// only its hash.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by [Engine.Validate]. It identifies the
// authenticated user and the pair the presented access token belongs to.
type AuthResult struct {
	UserID string
	PairID string
}

// Registry is the pair store abstraction the engine mutates through.
// [pair.Store] is the production implementation; the engine itself never
// caches pairs in process memory.
type Registry interface {
	Create(ctx context.Context, p *pair.Pair, ttl time.Duration) error
	Get(ctx context.Context, pairID string) (*pair.Pair, error)
	Revoke(ctx context.Context, pairID string, now time.Time) error
	Rotate(ctx context.Context, oldID string, providedHash [32]byte, next *pair.Pair, ttl time.Duration, now time.Time) error
}

// NotifyEvent is the anomaly notification record handed to sinks.
type NotifyEvent = internalnotify.Event

// NotifySink receives [NotifyEvent] values from the engine's dispatcher.
// Delivery is fire-and-forget: a slow or failing sink never delays the
// refresh call that triggered the event.
type NotifySink = internalnotify.Sink

// NoOpSink is a [NotifySink] that silently discards all events.
type NoOpSink = internalnotify.NoOpSink

// ChannelSink is a buffered channel-based [NotifySink].
type ChannelSink = internalnotify.ChannelSink

// JSONWriterSink is a [NotifySink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalnotify.JSONWriterSink

// WebhookSink is a [NotifySink] that POSTs each event as JSON to a fixed URL.
type WebhookSink = internalnotify.WebhookSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalnotify.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalnotify.NewJSONWriterSink(w)
}

// NewWebhookSink creates a [WebhookSink] targeting url. timeout bounds each
// delivery attempt.
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	return internalnotify.NewWebhookSink(url, timeout)
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricIssueSuccess counts successful pair issuances.
	MetricIssueSuccess = internalmetrics.MetricIssueSuccess
	// MetricIssueRejected counts issuance requests rejected by validation.
	MetricIssueRejected = internalmetrics.MetricIssueRejected
	// MetricRefreshSuccess counts completed rotations.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts refresh attempts failed for any
	// non-replay reason.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshReplayBlocked counts refresh attempts that presented an
	// already-consumed refresh token.
	MetricRefreshReplayBlocked = internalmetrics.MetricRefreshReplayBlocked
	// MetricRefreshRateLimited counts throttled refresh attempts.
	MetricRefreshRateLimited = internalmetrics.MetricRefreshRateLimited
	// MetricDeviceRejected counts refresh attempts rejected on a device
	// fingerprint mismatch.
	MetricDeviceRejected = internalmetrics.MetricDeviceRejected
	// MetricNetworkAnomaly counts tolerated network-origin changes.
	MetricNetworkAnomaly = internalmetrics.MetricNetworkAnomaly
	// MetricLogout counts explicit revocations.
	MetricLogout = internalmetrics.MetricLogout
	// MetricValidateFailure counts failed access token validations.
	MetricValidateFailure = internalmetrics.MetricValidateFailure
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
