// Package metrics provides observability for the habitat server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Collector gathers performance and mission metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Mission log persistence
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Commands
	CommandsAccepted int64
	CommandsRejected int64

	// Leaderboard
	ScoresSubmitted   int64
	ScoreFallbacks    int64
	LeaderboardCached int64

	// Mission gauges, guarded by mu
	MissionDays   float64
	MissionHealth float64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = NewCollector()

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

func storeMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if v <= cur || atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

// RecordTick records a simulation frame.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))
	storeMax(&c.TickLatencyMax, int64(latency))

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEventWrite records a mission log write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))
	storeMax(&c.EventWriteLatMax, int64(latency))

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordCommand records the outcome of an engine command.
func (c *Collector) RecordCommand(err error) {
	if err != nil {
		atomic.AddInt64(&c.CommandsRejected, 1)
		return
	}
	atomic.AddInt64(&c.CommandsAccepted, 1)
}

// RecordScoreSubmit records a leaderboard submission; fallback marks a
// submission that went to the local store.
func (c *Collector) RecordScoreSubmit(fallback bool) {
	atomic.AddInt64(&c.ScoresSubmitted, 1)
	if fallback {
		atomic.AddInt64(&c.ScoreFallbacks, 1)
	}
}

// RecordLeaderboardCacheHit records a ranked list served from cache.
func (c *Collector) RecordLeaderboardCacheHit() {
	atomic.AddInt64(&c.LeaderboardCached, 1)
}

// RecordMission updates the mission gauges.
func (c *Collector) RecordMission(days, health float64) {
	c.mu.Lock()
	c.MissionDays = days
	c.MissionHealth = health
	c.mu.Unlock()
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),
		"started":        humanize.Time(c.StartTime),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"commands": map[string]interface{}{
			"accepted": atomic.LoadInt64(&c.CommandsAccepted),
			"rejected": atomic.LoadInt64(&c.CommandsRejected),
		},

		"leaderboard": map[string]interface{}{
			"submitted":  atomic.LoadInt64(&c.ScoresSubmitted),
			"fallbacks":  atomic.LoadInt64(&c.ScoreFallbacks),
			"cache_hits": atomic.LoadInt64(&c.LeaderboardCached),
		},

		"mission": map[string]interface{}{
			"days":   c.MissionDays,
			"health": c.MissionHealth,
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return collector.Handler()
}

// Handler serves this collector's snapshot as JSON.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return collector.PrometheusHandler()
}

// PrometheusHandler serves this collector in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		writeMetric(w, "biohome_tick_count", "counter", "Total simulation frames", float64(atomic.LoadInt64(&c.TickCount)))
		writeMetric(w, "biohome_tick_latency_max_ms", "gauge", "Maximum frame latency", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)
		writeMetric(w, "biohome_events_written", "counter", "Total mission log events persisted", float64(atomic.LoadInt64(&c.EventsWritten)))
		writeMetric(w, "biohome_event_write_errors", "counter", "Total mission log write errors", float64(atomic.LoadInt64(&c.EventWriteErrors)))
		writeMetric(w, "biohome_ws_connections", "gauge", "Active WebSocket connections", float64(atomic.LoadInt64(&c.WSConnectionsActive)))

		fmt.Fprintf(w, "# HELP biohome_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE biohome_ws_messages_total counter\n")
		fmt.Fprintf(w, "biohome_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "biohome_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		fmt.Fprintf(w, "# HELP biohome_commands_total Engine commands by outcome\n")
		fmt.Fprintf(w, "# TYPE biohome_commands_total counter\n")
		fmt.Fprintf(w, "biohome_commands_total{outcome=\"accepted\"} %d\n", atomic.LoadInt64(&c.CommandsAccepted))
		fmt.Fprintf(w, "biohome_commands_total{outcome=\"rejected\"} %d\n\n", atomic.LoadInt64(&c.CommandsRejected))

		writeMetric(w, "biohome_scores_submitted", "counter", "Leaderboard submissions", float64(atomic.LoadInt64(&c.ScoresSubmitted)))
		writeMetric(w, "biohome_score_fallbacks", "counter", "Submissions stored locally after remote failure", float64(atomic.LoadInt64(&c.ScoreFallbacks)))

		c.mu.RLock()
		writeMetric(w, "biohome_mission_days", "gauge", "Simulated days elapsed", c.MissionDays)
		writeMetric(w, "biohome_mission_health", "gauge", "Crew health percentage", c.MissionHealth)
		c.mu.RUnlock()
	}
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value float64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %g\n\n", name, value)
}
