package authgate

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricSignUpSuccess counts completed sign-ups.
	MetricSignUpSuccess MetricID = iota
	// MetricSignUpConflict counts sign-ups rejected for a duplicate email.
	MetricSignUpConflict
	// MetricSignInSuccess counts successful credential sign-ins.
	MetricSignInSuccess
	// MetricSignInFailure counts sign-ins rejected as invalid credentials.
	MetricSignInFailure
	// MetricRefreshSuccess counts completed refresh-token rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rotations rejected as not-found or expired.
	MetricRefreshFailure
	// MetricSignOut counts completed sign-outs.
	MetricSignOut
	// MetricDenylistHit counts authenticated requests rejected by the
	// revocation registry.
	MetricDenylistHit

	metricIDCount
)

// Metrics holds atomic counters. All operations are no-ops when disabled,
// so instrumented call sites carry no branch cost worth configuring away.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics returns a Metrics instance; when enabled is false every
// operation is a no-op.
func NewMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a point-in-time copy of all counters. Nil or disabled
// metrics yield an empty map.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricIDCount)
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out[id] = m.counters[id].Load()
	}
	return out
}
