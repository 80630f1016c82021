package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics.
type Metrics struct {
	RequestCount  int64
	ErrorCount    int64
	AnalysisCount int64
	MLCalls       int64
	MLFailures    int64
	CacheHits     int64
	CacheMisses   int64
	StartTime     time.Time

	statusMutex          sync.RWMutex
	requestCountByStatus map[int]int64

	responseTimesMutex sync.Mutex
	responseTimeTotal  time.Duration
	responseTimeCount  int64
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		requestCountByStatus: make(map[int]int64),
	}
}

// RecordRequest records one completed HTTP request.
func (m *Metrics) RecordRequest(status int, duration time.Duration) {
	atomic.AddInt64(&m.RequestCount, 1)
	if status >= 500 {
		atomic.AddInt64(&m.ErrorCount, 1)
	}

	m.statusMutex.Lock()
	m.requestCountByStatus[status]++
	m.statusMutex.Unlock()

	m.responseTimesMutex.Lock()
	m.responseTimeTotal += duration
	m.responseTimeCount++
	m.responseTimesMutex.Unlock()
}

// IncrementAnalysis counts one completed thesis analysis.
func (m *Metrics) IncrementAnalysis() {
	atomic.AddInt64(&m.AnalysisCount, 1)
}

// RecordMLCall counts one remote predictor call and whether it failed.
func (m *Metrics) RecordMLCall(ok bool) {
	atomic.AddInt64(&m.MLCalls, 1)
	if !ok {
		atomic.AddInt64(&m.MLFailures, 1)
	}
}

// IncrementCacheHit counts a response cache hit.
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss counts a response cache miss.
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// GetStats returns a snapshot of the metrics for the health endpoint.
func (m *Metrics) GetStats() map[string]any {
	m.statusMutex.RLock()
	byStatus := make(map[int]int64, len(m.requestCountByStatus))
	for k, v := range m.requestCountByStatus {
		byStatus[k] = v
	}
	m.statusMutex.RUnlock()

	m.responseTimesMutex.Lock()
	var avgMs float64
	if m.responseTimeCount > 0 {
		avgMs = float64(m.responseTimeTotal.Milliseconds()) / float64(m.responseTimeCount)
	}
	m.responseTimesMutex.Unlock()

	return map[string]any{
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"request_count":        atomic.LoadInt64(&m.RequestCount),
		"error_count":          atomic.LoadInt64(&m.ErrorCount),
		"analysis_count":       atomic.LoadInt64(&m.AnalysisCount),
		"ml_calls":             atomic.LoadInt64(&m.MLCalls),
		"ml_failures":          atomic.LoadInt64(&m.MLFailures),
		"cache_hits":           atomic.LoadInt64(&m.CacheHits),
		"cache_misses":         atomic.LoadInt64(&m.CacheMisses),
		"requests_by_status":   byStatus,
		"avg_response_time_ms": avgMs,
	}
}
