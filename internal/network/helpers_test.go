package network

import (
	"context"
	"testing"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/engine"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
)

// startEngine runs a real engine behind a fast frame loop.
func startEngine(t *testing.T) (*engine.Runner, *events.EventLog, *metrics.Collector) {
	t.Helper()
	cfg := config.DefaultSimulation()
	cfg.Seed = 7
	cfg.FrameRate = 5 * time.Millisecond
	cfg.SnapshotEvery = 1

	m := metrics.NewCollector()
	el := events.NewEventLog(cfg.LogCapacity, nil)
	e := engine.New(cfg, engine.NewRand(cfg.Seed), el, logger.Discard())
	r := engine.NewRunner(e, cfg, 16, m, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go r.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.Done()
	})
	return r, el, m
}
