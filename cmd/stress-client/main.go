// Package main is a load generator: many WebSocket clients sending habitat
// commands at a fixed interval and measuring round-trip latency.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/network"
)

// Config for the load run.
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	Output         string
}

// Stats tracks performance metrics.
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Results          int64
	Rejected         int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 50, "Number of concurrent clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Command interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	output := flag.String("out", "stress_test_results.json", "Results file")
	flag.Parse()

	cfg := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
		Output:         *output,
	}

	fmt.Println("=========================================")
	fmt.Println("BIOHOME STRESS CLIENT")
	fmt.Println("=========================================")
	fmt.Printf("Server:   %s\n", cfg.ServerURL)
	fmt.Printf("Clients:  %d\n", cfg.NumClients)
	fmt.Printf("Interval: %v\n", cfg.ActionInterval)
	fmt.Printf("Duration: %v\n", cfg.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TestDuration)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	stats := runStressTest(ctx, cfg)
	printResults(stats, cfg)
}

func runStressTest(ctx context.Context, cfg Config) *Stats {
	stats := &Stats{Latencies: make([]time.Duration, 0, 10000)}
	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")
	for i := 0; i < cfg.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, cfg, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Printf("All %d clients started\n\n", cfg.NumClients)

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Printf("Progress: sent=%s recv=%s errors=%d\n",
					humanize.Comma(atomic.LoadInt64(&stats.MessagesSent)),
					humanize.Comma(atomic.LoadInt64(&stats.MessagesReceived)),
					atomic.LoadInt64(&stats.Errors))
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, cfg Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	rng := rand.New(rand.NewSource(int64(clientID) + time.Now().UnixNano()))

	// Results come back in send order on one connection.
	pending := make(chan time.Time, 1024)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)

			var res network.Result
			if json.Unmarshal(data, &res) != nil || res.Type != network.MsgTypeResult {
				continue
			}
			atomic.AddInt64(&stats.Results, 1)
			if !res.OK {
				atomic.AddInt64(&stats.Rejected, 1)
			}
			select {
			case sent := <-pending:
				stats.mu.Lock()
				stats.Latencies = append(stats.Latencies, time.Since(sent))
				stats.mu.Unlock()
			default:
			}
		}
	}()

	ticker := time.NewTicker(cfg.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			req := randomRequest(rng)
			select {
			case pending <- time.Now():
			default:
			}
			if err := conn.WriteJSON(req); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			atomic.AddInt64(&stats.MessagesSent, 1)
		}
	}
}

// randomRequest mixes reads with commands that are mostly rejected once
// the habitat fills up, which is the load worth measuring.
func randomRequest(rng *rand.Rand) network.Request {
	payload := func(v interface{}) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}

	switch rng.Intn(6) {
	case 0:
		t := habitat.ModuleTypes[rng.Intn(len(habitat.ModuleTypes))]
		return network.Request{Type: network.CmdPlaceModule, Payload: payload(map[string]interface{}{
			"type": t, "x": rng.Intn(100), "y": rng.Intn(50),
		})}
	case 1:
		return network.Request{Type: network.CmdAddCrew}
	case 2:
		return network.Request{Type: network.CmdFindPath, Payload: payload(map[string]interface{}{
			"from": map[string]int{"x": rng.Intn(100), "y": rng.Intn(50)},
			"to":   map[string]int{"x": rng.Intn(100), "y": rng.Intn(50)},
		})}
	case 3:
		return network.Request{Type: network.CmdSetSpeed, Payload: payload(map[string]float64{
			"multiplier": float64(1 + rng.Intn(100)),
		})}
	default:
		return network.Request{Type: network.CmdSnapshot}
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := int(float64(len(sorted)-1) * p)
	return sorted[i]
}

func printResults(stats *Stats, cfg Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	results := atomic.LoadInt64(&stats.Results)
	rejected := atomic.LoadInt64(&stats.Rejected)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Messages Sent:     %s\n", humanize.Comma(sent))
	fmt.Printf("Messages Received: %s\n", humanize.Comma(recv))
	fmt.Printf("Results:           %s (%s rejected)\n", humanize.Comma(results), humanize.Comma(rejected))
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / cfg.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)

	stats.mu.Lock()
	lat := append([]time.Duration(nil), stats.Latencies...)
	stats.mu.Unlock()
	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	if len(lat) > 0 {
		fmt.Printf("\nRound-trip latency:\n")
		fmt.Printf("  p50: %v\n", percentile(lat, 0.50))
		fmt.Printf("  p95: %v\n", percentile(lat, 0.95))
		fmt.Printf("  max: %v\n", lat[len(lat)-1])
	}

	fmt.Println("\n-----------------------------------------")
	switch {
	case errs == 0 && results >= sent*9/10:
		fmt.Println("PASSED: server kept up with the load")
	case float64(errs)/float64(sent+1) < 0.05:
		fmt.Println("WARNING: some errors or dropped results")
	default:
		fmt.Println("FAILED: high error rate")
	}
	fmt.Println("=========================================")

	out := map[string]interface{}{
		"messages_sent":      sent,
		"messages_received":  recv,
		"results":            results,
		"rejected":           rejected,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"p50_ms":             float64(percentile(lat, 0.50)) / 1e6,
		"p95_ms":             float64(percentile(lat, 0.95)) / 1e6,
		"config": map[string]interface{}{
			"clients":  cfg.NumClients,
			"interval": cfg.ActionInterval.String(),
			"duration": cfg.TestDuration.String(),
		},
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		fmt.Printf("\nFailed to save results: %v\n", err)
		return
	}
	fmt.Printf("\nResults saved to %s\n", cfg.Output)
}
