package faceid

import "sync/atomic"

// MetricID identifies one in-process decision counter.
type MetricID uint16

const (
	MetricEnroll MetricID = iota
	MetricDisable
	MetricVerifyPending
	MetricVerifySuccess
	MetricVerifyFailure
	MetricVerifySkipped
	MetricVerifyExhausted
	MetricFaceLoginSuccess
	MetricFaceLoginFailure
	MetricFaceLoginRateLimited
	MetricSessionCreated
	metricIDCount
)

const cacheLineSize = 64

// paddedCounter keeps hot counters on separate cache lines.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters for the engine's decision outcomes. A nil
// or disabled Metrics is a no-op on every method.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics builds a counter set; counting is skipped entirely when
// cfg.Enabled is false.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter. Safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current count for one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter under atomic loads. Counters may advance
// while the snapshot is taken; each individual value is consistent.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
