package armkernel

import "sync/atomic"

// Metrics tracks scheduling and I/O statistics for a running kernel.
type Metrics struct {
	ResetCount atomic.Uint64 // number of reset entries handled
	IRQCount   atomic.Uint64 // number of IRQ entries handled
	SvcCount   atomic.Uint64 // number of SVC entries handled

	ContextSwitches atomic.Uint64 // times dispatch picked a different process
	Boosts          atomic.Uint64 // times the MLFQ was boosted

	ProcessesCreated   atomic.Uint64
	ProcessesExited    atomic.Uint64
	ProcessesSignalled atomic.Uint64

	BytesRead    atomic.Uint64
	BytesWritten atomic.Uint64
	TasksBlocked atomic.Uint64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of Metrics for reporting.
type MetricsSnapshot struct {
	ResetCount, IRQCount, SvcCount        uint64
	ContextSwitches, Boosts               uint64
	ProcessesCreated, ProcessesExited     uint64
	ProcessesSignalled                    uint64
	BytesRead, BytesWritten, TasksBlocked uint64
}

// Snapshot returns a consistent-enough snapshot of m for logging or
// tests; individual fields may be a few increments stale relative to
// each other since no global lock is held while reading them.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ResetCount:         m.ResetCount.Load(),
		IRQCount:           m.IRQCount.Load(),
		SvcCount:           m.SvcCount.Load(),
		ContextSwitches:    m.ContextSwitches.Load(),
		Boosts:             m.Boosts.Load(),
		ProcessesCreated:   m.ProcessesCreated.Load(),
		ProcessesExited:    m.ProcessesExited.Load(),
		ProcessesSignalled: m.ProcessesSignalled.Load(),
		BytesRead:          m.BytesRead.Load(),
		BytesWritten:       m.BytesWritten.Load(),
		TasksBlocked:       m.TasksBlocked.Load(),
	}
}
