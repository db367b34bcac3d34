package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	accountsDecoded    atomic.Uint64
	validationFailures atomic.Uint64
	productsEnumerated atomic.Uint64
	registryMutations  atomic.Uint64
	invocations        atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordInvocation records one completed invocation with its latency.
func (m *Metrics) RecordInvocation(latencyNs int64) {
	m.invocations.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordDecode records a successfully decoded account.
func (m *Metrics) RecordDecode() {
	m.accountsDecoded.Add(1)
}

// RecordValidationFailure records a record that failed integrity checks.
func (m *Metrics) RecordValidationFailure() {
	m.validationFailures.Add(1)
}

// RecordEnumerated adds n enumerated product slots.
func (m *Metrics) RecordEnumerated(n int) {
	m.productsEnumerated.Add(uint64(n))
}

// RecordRegistryMutation records a committed registry change.
func (m *Metrics) RecordRegistryMutation() {
	m.registryMutations.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	Invocations        uint64
	AccountsDecoded    uint64
	ValidationFailures uint64
	ProductsEnumerated uint64
	RegistryMutations  uint64
	AvgLatencyNs       int64
	Timestamp          time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		Invocations:        m.invocations.Load(),
		AccountsDecoded:    m.accountsDecoded.Load(),
		ValidationFailures: m.validationFailures.Load(),
		ProductsEnumerated: m.productsEnumerated.Load(),
		RegistryMutations:  m.registryMutations.Load(),
		AvgLatencyNs:       avgLatency,
		Timestamp:          time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.invocations.Store(0)
	m.accountsDecoded.Store(0)
	m.validationFailures.Store(0)
	m.productsEnumerated.Store(0)
	m.registryMutations.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
