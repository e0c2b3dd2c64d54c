package realtime

import "sync"

// Metrics tracks process-wide connection counters. Counters are initialized
// at startup, updated on every connect/disconnect and never reset while the
// process runs.
type Metrics struct {
	mu                  sync.Mutex
	totalConnections    uint64
	currentConnections  uint64
	totalDisconnections uint64
}

// MetricsSnapshot is a point-in-time copy of the connection counters.
type MetricsSnapshot struct {
	TotalConnections    uint64 `json:"totalConnections"`
	CurrentConnections  uint64 `json:"currentConnections"`
	TotalDisconnections uint64 `json:"totalDisconnections"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) connectionOpened() {
	m.mu.Lock()
	m.totalConnections++
	m.currentConnections++
	m.mu.Unlock()
}

func (m *Metrics) connectionClosed() {
	m.mu.Lock()
	if m.currentConnections > 0 {
		m.currentConnections--
	}
	m.totalDisconnections++
	m.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		TotalConnections:    m.totalConnections,
		CurrentConnections:  m.currentConnections,
		TotalDisconnections: m.totalDisconnections,
	}
}
