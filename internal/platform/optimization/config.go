// Package optimization provides concurrency tuning profiles for the server's
// channels, connection pools and client rate limits.
package optimization

import (
	"runtime"
)

// Config holds tuned parameters for a load profile.
type Config struct {
	// Channel buffer sizes
	CommandQueueBuffer     int
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int
	RedisPoolSize  int

	// Rate limiting, per WebSocket client
	MaxMessagesPerSecond float64
	MessageBurst         int
	MaxClients           int
}

// ForProfile returns the named profile: "stress", "low" or the default.
func ForProfile(name string) *Config {
	switch name {
	case "stress":
		return StressTestConfig()
	case "low":
		return LowResourceConfig()
	default:
		return DefaultConfig()
	}
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		CommandQueueBuffer:     64,
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,
		RedisPoolSize:  numCPU * 2,

		MaxMessagesPerSecond: 10,
		MessageBurst:         20,
		MaxClients:           50,
	}
}

// StressTestConfig returns aggressive settings for load testing.
func StressTestConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		CommandQueueBuffer:     512,
		BroadcastChannelBuffer: 1024,
		ClientSendBuffer:       128,

		DBMaxOpenConns: numCPU * 8,
		DBMaxIdleConns: numCPU * 4,
		RedisPoolSize:  numCPU * 4,

		MaxMessagesPerSecond: 100,
		MessageBurst:         200,
		MaxClients:           500,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		CommandQueueBuffer:     8,
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		DBMaxOpenConns: 2,
		DBMaxIdleConns: 1,
		RedisPoolSize:  2,

		MaxMessagesPerSecond: 5,
		MessageBurst:         10,
		MaxClients:           10,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseCommandQueue    bool     `json:"increase_command_queue"`
	IncreaseBroadcastBuffer bool     `json:"increase_broadcast_buffer"`
	IncreaseDBConnections   bool     `json:"increase_db_connections"`
	Notes                   []string `json:"notes"`
}

// Analyze examines a metrics snapshot and returns tuning recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	if tick, ok := metrics["tick"].(map[string]interface{}); ok {
		if maxLat, ok := tick["max_latency_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseCommandQueue = true
			rec.Notes = append(rec.Notes, "Frame latency exceeds 50ms - commands are queuing behind ticks")
		}
	}

	if events, ok := metrics["events"].(map[string]interface{}); ok {
		if maxLat, ok := events["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Mission log write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Mission log write errors detected - check DB connection pool")
		}
	}

	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations returns a copy of config with recommendations applied.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	tuned := *config
	if rec.IncreaseCommandQueue {
		tuned.CommandQueueBuffer *= 2
	}
	if rec.IncreaseBroadcastBuffer {
		tuned.BroadcastChannelBuffer *= 2
		tuned.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		tuned.DBMaxOpenConns = int(float64(tuned.DBMaxOpenConns) * 1.5)
		tuned.DBMaxIdleConns = int(float64(tuned.DBMaxIdleConns) * 1.5)
	}
	return &tuned
}
