package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// uniqueCallers counts the distinct public keys that asked a question since
// the last reset. Keys are kept in memory only.
type uniqueCallers struct {
	counter prometheus.Gauge
	callers map[string]struct{}
	mu      sync.Mutex
}

const callersCountPerWeek = "callers_count_per_week"

var totalUniqueCallersPerWeekMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: chat2query,
		Name:      callersCountPerWeek,
		Help:      "number of distinct public keys that sent a question this week",
	},
)

var UniqueCallersPerWeek = &uniqueCallers{
	counter: totalUniqueCallersPerWeekMetric,
	callers: make(map[string]struct{}),
}

func (u *uniqueCallers) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.callers = make(map[string]struct{})
	u.counter.Set(0)
}

func (u *uniqueCallers) IncreaseTotalUniqueCaller(publicKey string) {
	if publicKey == "" {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.callers[publicKey]; exists {
		return
	}

	u.callers[publicKey] = struct{}{}
	u.counter.Inc()
}

func (u *uniqueCallers) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.callers)
}
