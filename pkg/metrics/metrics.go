// Package metrics tracks scanning throughput and decode latency.
package metrics

import (
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// HistorySize is the number of decode latencies kept for statistics.
const HistorySize = 100

// Snapshot is a point-in-time view of the collected metrics.
type Snapshot struct {
	Ticks      int            `json:"ticks"`
	Attempts   int            `json:"attempts"` // Decoder invocations
	Hits       int            `json:"hits"`     // Attempts that produced a payload
	HitRate    float64        `json:"hit_rate"`
	Notified   map[string]int `json:"notified"` // Guidance messages by kind
	Statuses   map[string]int `json:"statuses"`
	LatencyAvg time.Duration  `json:"latency_avg"`
	LatencyStd time.Duration  `json:"latency_std"`
	LatencyP95 time.Duration  `json:"latency_p95"`
	LastDecode time.Time      `json:"last_decode"`
}

// Collector aggregates per-tick metrics.
// It is goroutine-safe.
type Collector struct {
	mu         sync.Mutex
	ticks      int
	attempts   int
	hits       int
	notified   map[string]int
	statuses   map[string]int
	latencies  []float64 // Milliseconds, oldest first
	lastDecode time.Time

	onUpdate func(Snapshot)
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		notified:  make(map[string]int),
		statuses:  make(map[string]int),
		latencies: make([]float64, 0, HistorySize),
	}
}

// OnUpdate sets a callback that fires after each recorded decode.
func (c *Collector) OnUpdate(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// RecordTick counts one processed frame and its status, if it has one.
func (c *Collector) RecordTick(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	if status != "" {
		c.statuses[status]++
	}
}

// RecordDecode records one decoder invocation.
func (c *Collector) RecordDecode(latency time.Duration, hit bool) {
	c.mu.Lock()
	c.attempts++
	if hit {
		c.hits++
		c.lastDecode = time.Now()
	}
	c.latencies = append(c.latencies, float64(latency)/float64(time.Millisecond))
	if len(c.latencies) > HistorySize {
		c.latencies = c.latencies[1:]
	}
	fn := c.onUpdate
	var snap Snapshot
	if fn != nil {
		snap = c.snapshotLocked()
	}
	c.mu.Unlock()

	if fn != nil {
		go fn(snap)
	}
}

// RecordGuidance counts a delivered guidance message.
func (c *Collector) RecordGuidance(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notified[kind]++
}

// Snapshot returns the current metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Reset clears everything.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks, c.attempts, c.hits = 0, 0, 0
	c.notified = make(map[string]int)
	c.statuses = make(map[string]int)
	c.latencies = c.latencies[:0]
	c.lastDecode = time.Time{}
}

// Must be called with mutex held.
func (c *Collector) snapshotLocked() Snapshot {
	s := Snapshot{
		Ticks:      c.ticks,
		Attempts:   c.attempts,
		Hits:       c.hits,
		Notified:   make(map[string]int, len(c.notified)),
		Statuses:   make(map[string]int, len(c.statuses)),
		LastDecode: c.lastDecode,
	}
	for k, v := range c.notified {
		s.Notified[k] = v
	}
	for k, v := range c.statuses {
		s.Statuses[k] = v
	}
	if c.attempts > 0 {
		s.HitRate = float64(c.hits) / float64(c.attempts)
	}

	if len(c.latencies) > 0 {
		mean, std := stat.MeanStdDev(c.latencies, nil)
		if len(c.latencies) == 1 {
			std = 0
		}
		sorted := slices.Clone(c.latencies)
		slices.Sort(sorted)
		p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)

		s.LatencyAvg = ms(mean)
		s.LatencyStd = ms(std)
		s.LatencyP95 = ms(p95)
	}
	return s
}

func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}

// FormatLatency returns a one-line latency summary.
func (s Snapshot) FormatLatency() string {
	return formatDuration(s.LatencyAvg) + " avg | " +
		formatDuration(s.LatencyStd) + " std | " +
		formatDuration(s.LatencyP95) + " p95"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "---ms"
	}
	return d.Round(time.Millisecond).String()
}
