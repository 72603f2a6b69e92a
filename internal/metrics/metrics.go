package metrics

import "sync/atomic"

// MetricID identifies one counter slot.
type MetricID uint16

const (
	// MetricIssueSuccess counts successful pair issuances.
	MetricIssueSuccess MetricID = iota
	// MetricIssueRejected counts issuance requests rejected by validation.
	MetricIssueRejected
	// MetricRefreshSuccess counts completed rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh attempts failed for any non-replay reason.
	MetricRefreshFailure
	// MetricRefreshReplayBlocked counts refresh attempts against a consumed pair.
	MetricRefreshReplayBlocked
	// MetricRefreshRateLimited counts throttled refresh attempts.
	MetricRefreshRateLimited
	// MetricDeviceRejected counts refresh attempts rejected on a device mismatch.
	MetricDeviceRejected
	// MetricNetworkAnomaly counts tolerated network-origin changes.
	MetricNetworkAnomaly
	// MetricLogout counts explicit revocations.
	MetricLogout
	// MetricValidateFailure counts failed access token validations.
	MetricValidateFailure
	// MetricIDCount is the number of defined counters.
	MetricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls metric collection.
type Config struct {
	Enabled bool
}

// Metrics stores lock-free counters. The write path is allocation-free; a
// nil or disabled receiver makes every method a no-op.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[MetricID]uint64{}}
	}

	s := Snapshot{Counters: make(map[MetricID]uint64, int(MetricIDCount))}
	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
