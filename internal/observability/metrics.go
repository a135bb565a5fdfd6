package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	toolCalls    map[string]int64
	toolLatency  map[string]time.Duration
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests        map[string]int64 `json:"requests"`
	Errors          map[string]int64 `json:"errors"`
	ToolCalls       map[string]int64 `json:"tool_calls"`
	ToolLatencyMSec map[string]int64 `json:"tool_latency_ms"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		toolCalls:    make(map[string]int64),
		toolLatency:  make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordToolCall counts one tool invocation by tool name and outcome and
// accumulates its latency.
func (m *Metrics) RecordToolCall(tool string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCalls[tool+"|"+outcome]++
	m.toolLatency[tool] += duration
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Requests:        map[string]int64{},
		Errors:          map[string]int64{},
		ToolCalls:       map[string]int64{},
		ToolLatencyMSec: map[string]int64{},
	}
	if m == nil {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		s.Requests[k] = v
	}
	for k, v := range m.errorCount {
		s.Errors[k] = v
	}
	for k, v := range m.toolCalls {
		s.ToolCalls[k] = v
	}
	for k, v := range m.toolLatency {
		s.ToolLatencyMSec[k] = v.Milliseconds()
	}
	return s
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
