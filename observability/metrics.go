package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics is an in-process collector of redirection statistics, useful
// when no OpenTelemetry pipeline is configured. It implements the
// interposer's Telemetry counter surface.
type Metrics struct {
	strategyCounts map[string]*int64
	totalAttempts  int64
	totalErrors    int64
	lastAttemptAt  atomic.Int64
	mu             sync.RWMutex
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		strategyCounts: make(map[string]*int64),
	}
}

// RecordCounter records one attempt or error, labeled by strategy.
func (m *Metrics) RecordCounter(name string, labels map[string]string) {
	if name == "exec_errors_total" {
		atomic.AddInt64(&m.totalErrors, 1)
		return
	}

	atomic.AddInt64(&m.totalAttempts, 1)
	m.lastAttemptAt.Store(time.Now().UnixNano())

	strategy := labels["strategy"]
	m.mu.RLock()
	counter, ok := m.strategyCounts[strategy]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		counter, ok = m.strategyCounts[strategy]
		if !ok {
			counter = new(int64)
			m.strategyCounts[strategy] = counter
		}
		m.mu.Unlock()
	}
	atomic.AddInt64(counter, 1)
}

// TotalAttempts returns the number of recorded exec attempts.
func (m *Metrics) TotalAttempts() int64 {
	return atomic.LoadInt64(&m.totalAttempts)
}

// TotalErrors returns the number of recorded exec failures.
func (m *Metrics) TotalErrors() int64 {
	return atomic.LoadInt64(&m.totalErrors)
}

// StrategyCount returns the attempt count for one strategy label.
func (m *Metrics) StrategyCount(strategy string) int64 {
	m.mu.RLock()
	counter, ok := m.strategyCounts[strategy]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(counter)
}

// LastAttemptAt returns the time of the most recent attempt, or the zero
// time when none was recorded.
func (m *Metrics) LastAttemptAt() time.Time {
	ns := m.lastAttemptAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
