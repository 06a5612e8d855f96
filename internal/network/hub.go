// Package network exposes the habitat over WebSocket and REST. Every
// engine access goes through the frame loop's command queue.
package network

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MRamiBalles/BioHome/server/internal/engine"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
	"github.com/MRamiBalles/BioHome/server/internal/platform/optimization"
)

// Executor runs a command on the engine's owning goroutine.
// *engine.Runner implements it.
type Executor interface {
	Do(ctx context.Context, fn engine.Command) error
}

// Hub maintains the set of active clients and broadcasts snapshots to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex

	exec    Executor
	tuning  *optimization.Config
	logger  *logger.Logger
	metrics *metrics.Collector
}

// NewHub initializes a new WebSocket Hub.
func NewHub(exec Executor, tuning *optimization.Config, log *logger.Logger, m *metrics.Collector) *Hub {
	if tuning == nil {
		tuning = optimization.DefaultConfig()
	}
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.Get()
	}
	return &Hub{
		broadcast:  make(chan []byte, tuning.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		exec:       exec,
		tuning:     tuning,
		logger:     log.With("component", "hub"),
		metrics:    m,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("WebSocket client connected", "remote", client.remote)
		case client := <-h.unregister:
			h.drop(client)
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.RecordWSMessage(false)
				default:
					// Slow consumer.
					delete(h.clients, client)
					close(client.send)
					h.metrics.RecordWSConnection(-1)
					h.metrics.RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.metrics.RecordWSConnection(-1)
		h.logger.Info("WebSocket client disconnected", "remote", client.remote)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Full reports whether the hub has reached its client limit.
func (h *Hub) Full() bool {
	return h.tuning.MaxClients > 0 && h.ClientCount() >= h.tuning.MaxClients
}

// BroadcastSnapshot serializes a snapshot and queues it for every client.
// It never blocks: when the queue is full the frame is dropped, since the
// next one supersedes it. Safe to pass to Runner.Subscribe.
func (h *Hub) BroadcastSnapshot(snap engine.Snapshot) {
	payload, err := json.Marshal(SnapshotMessage{Type: MsgTypeSnapshot, State: snap})
	if err != nil {
		h.logger.Error("Failed to serialize snapshot for broadcast", "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Debug("broadcast queue full, dropping snapshot", "tick", snap.Tick)
	}
}

// Execute compiles req and runs it through exec. The error, if any, is
// also folded into the Result. data is only read once Do reports success:
// after a timeout the queued command may still be writing it.
func Execute(ctx context.Context, exec Executor, req Request) (Result, error) {
	var data interface{}
	fn, err := Compile(req, &data)
	if err != nil {
		return resultFor(req.Type, nil, err), err
	}
	if err := exec.Do(ctx, fn); err != nil {
		return resultFor(req.Type, nil, err), err
	}
	return resultFor(req.Type, data, nil), nil
}
