package observability

import (
	"strconv"
	"sync"
	"time"
)

// RoutingOutcome labels how a scoring pass ended.
type RoutingOutcome string

const (
	RoutingOutcomeAssigned    RoutingOutcome = "assigned"
	RoutingOutcomeCleared     RoutingOutcome = "cleared"
	RoutingOutcomeEmpty       RoutingOutcome = "empty_response"
	RoutingOutcomeAborted     RoutingOutcome = "aborted"
	RoutingOutcomeDropped     RoutingOutcome = "queue_full"
	RoutingOutcomeLockTimeout RoutingOutcome = "lock_timeout"
)

// Metrics provides basic in-memory counters for requests and routing
// passes.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	routingCount map[RoutingOutcome]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		routingCount: make(map[RoutingOutcome]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
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

// RecordRoutingPass counts one scoring pass by outcome.
func (m *Metrics) RecordRoutingPass(outcome RoutingOutcome) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routingCount[outcome]++
}

// RoutingPassCount returns the counter for an outcome.
func (m *Metrics) RoutingPassCount(outcome RoutingOutcome) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routingCount[outcome]
}
