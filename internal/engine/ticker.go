package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
)

// FrameRate is the default real-time period between ticks.
const FrameRate = 100 * time.Millisecond

// ErrRunnerStopped is returned by Do once the loop has exited.
var ErrRunnerStopped = errors.New("engine runner stopped")

// Command mutates or reads the engine on the loop goroutine.
type Command func(e *Engine) error

type queuedCommand struct {
	fn     Command
	result chan error
}

// Runner is the frame loop. It is the only goroutine that touches the
// Engine: it ticks it with measured wall-clock deltas, executes queued
// commands between frames and fans snapshots out to subscribers.
type Runner struct {
	engine        *Engine
	logger        *logger.Logger
	metrics       *metrics.Collector
	frameRate     time.Duration
	snapshotEvery int64

	commands chan queuedCommand
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}

	mu          sync.RWMutex
	subscribers []func(Snapshot)

	frames   int64
	lastSeen Phase
}

// NewRunner wraps an engine in a frame loop. queueSize bounds how many
// commands may wait between frames.
func NewRunner(e *Engine, cfg config.SimulationConfig, queueSize int, m *metrics.Collector, log *logger.Logger) *Runner {
	frameRate := cfg.FrameRate
	if frameRate <= 0 {
		frameRate = FrameRate
	}
	every := int64(cfg.SnapshotEvery)
	if every <= 0 {
		every = 1
	}
	if m == nil {
		m = metrics.Get()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		engine:        e,
		logger:        log.With("component", "runner"),
		metrics:       m,
		frameRate:     frameRate,
		snapshotEvery: every,
		commands:      make(chan queuedCommand, queueSize),
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
		lastSeen:      e.Phase(),
	}
}

// Subscribe registers fn to receive snapshots. fn runs on the loop
// goroutine and must not block.
func (r *Runner) Subscribe(fn func(Snapshot)) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Start runs the loop until ctx is cancelled or Stop is called. Call in a
// goroutine.
func (r *Runner) Start(ctx context.Context) {
	defer close(r.done)
	r.logger.Info("frame loop started", "frame_rate", r.frameRate.String())

	ticker := time.NewTicker(r.frameRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("frame loop stopped by context")
			return
		case <-r.stopChan:
			r.logger.Info("frame loop stopped manually")
			return
		case cmd := <-r.commands:
			cmd.result <- cmd.fn(r.engine)
			r.afterChange()
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			r.frame(delta)
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

// Done is closed when the loop has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Do runs fn on the loop goroutine and waits for its result.
func (r *Runner) Do(ctx context.Context, fn Command) error {
	cmd := queuedCommand{fn: fn, result: make(chan error, 1)}

	select {
	case r.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRunnerStopped
	}

	select {
	case err := <-cmd.result:
		r.metrics.RecordCommand(err)
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRunnerStopped
	}
}

// Snapshot fetches a copy of the state through the loop.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.Do(ctx, func(e *Engine) error {
		snap = e.Snapshot()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// frame advances the engine by one measured delta.
func (r *Runner) frame(deltaSeconds float64) {
	start := time.Now()
	r.engine.Tick(deltaSeconds)
	r.metrics.RecordTick(time.Since(start))

	r.frames++
	if r.frames%r.snapshotEvery == 0 {
		r.afterChange()
	}
}

// afterChange publishes a snapshot and reports phase transitions.
func (r *Runner) afterChange() {
	snap := r.engine.Snapshot()
	r.metrics.RecordMission(snap.Days, snap.Resources.Health)

	if snap.Phase != r.lastSeen {
		r.lastSeen = snap.Phase
		if snap.Phase == PhaseOver {
			r.logger.Info("mission summary",
				"outcome", string(snap.Outcome),
				"survived", humanize.FormatFloat("#,###.#", snap.Days)+" days",
				"cost", "$"+humanize.Commaf(snap.TotalCost)+"M",
				"score", humanize.Comma(int64(snap.Score)),
				"frames", humanize.Comma(r.frames),
			)
		}
	}

	r.mu.RLock()
	subs := r.subscribers
	r.mu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}
