// Package stats tracks runtime statistics for the coach service.
package stats

import (
	"runtime"
	"sync"
	"time"
)

// Collector accumulates per-turn counters. Safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	startTime     time.Time
	turnCount     int64
	errorCount    int64
	tokenCount    int64
	tagActions    int64
	fallbacks     int64
	totalDuration time.Duration
}

// NewCollector creates a collector anchored at now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Turn describes one completed chat turn for recording.
type Turn struct {
	Tokens   int
	Duration time.Duration
	Failed   bool

	// TagAction and Fallback report which extraction path fired, if any.
	TagAction bool
	Fallback  bool
}

// Record adds one turn to the counters.
func (c *Collector) Record(t Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turnCount++
	c.tokenCount += int64(t.Tokens)
	c.totalDuration += t.Duration
	if t.Failed {
		c.errorCount++
	}
	if t.TagAction {
		c.tagActions++
	}
	if t.Fallback {
		c.fallbacks++
	}
}

// Stats is a point-in-time snapshot.
type Stats struct {
	Uptime      string  `json:"uptime"`
	Goroutines  int     `json:"goroutines"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`

	TurnCount    int64   `json:"turn_count"`
	ErrorCount   int64   `json:"error_count"`
	TokenCount   int64   `json:"token_count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`

	// Extraction breakdown: how actions were produced.
	TagActions      int64   `json:"tag_actions"`
	FallbackActions int64   `json:"fallback_actions"`
	TagHitRate      float64 `json:"tag_hit_rate"`
}

// Snapshot returns current statistics.
func (c *Collector) Snapshot() *Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.mu.Lock()
	defer c.mu.Unlock()

	avgLatency := float64(0)
	if c.turnCount > 0 {
		avgLatency = float64(c.totalDuration.Milliseconds()) / float64(c.turnCount)
	}
	tagRate := float64(0)
	if actions := c.tagActions + c.fallbacks; actions > 0 {
		tagRate = float64(c.tagActions) / float64(actions) * 100
	}

	return &Stats{
		Uptime:          time.Since(c.startTime).Round(time.Second).String(),
		Goroutines:      runtime.NumGoroutine(),
		HeapAllocMB:     float64(m.HeapAlloc) / 1024 / 1024,
		TurnCount:       c.turnCount,
		ErrorCount:      c.errorCount,
		TokenCount:      c.tokenCount,
		AvgLatencyMs:    avgLatency,
		TagActions:      c.tagActions,
		FallbackActions: c.fallbacks,
		TagHitRate:      tagRate,
	}
}
