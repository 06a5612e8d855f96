// Package main is the entry point for the BioHome habitat server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/BioHome/server/internal/engine"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/infra/cache"
	"github.com/MRamiBalles/BioHome/server/internal/infra/storage"
	"github.com/MRamiBalles/BioHome/server/internal/leaderboard"
	"github.com/MRamiBalles/BioHome/server/internal/network"
	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
	"github.com/MRamiBalles/BioHome/server/internal/platform/optimization"
)

func main() {
	bootLog := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(os.Stdout, cfg.Logging.Level, cfg.Logging.JSONFormat)
	tuning := optimization.ForProfile(cfg.Profile)
	m := metrics.Get()
	missionID := uuid.NewString()

	appLogger.Info("Initializing BioHome habitat server",
		"mission_id", missionID,
		"scenario", cfg.Simulation.ScenarioName,
		"profile", cfg.Profile,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Initializing SQLite database", "path", cfg.Database.SQLitePath)
	if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			appLogger.Error("Failed to create database directory", "error", err)
			os.Exit(1)
		}
	}
	db, err := storage.InitSQLite(cfg.Database.SQLitePath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	eventRepo := storage.NewSQLiteEventRepository(db)
	persister := storage.NewEventPersister(eventRepo, missionID, m)

	appLogger.Info("Bootstrapping mission log...")
	eventLog := events.NewEventLog(cfg.Simulation.LogCapacity, persister)
	eventLog.OnPersistError(func(err error) {
		appLogger.Warn("Failed to persist mission event", "error", err)
	})

	scores, closeScores := buildLeaderboard(ctx, cfg, db, tuning, appLogger, m)
	defer closeScores()

	appLogger.Info("Bootstrapping engine...")
	eng := engine.New(cfg.Simulation, engine.NewRand(cfg.Simulation.Seed), eventLog, appLogger)
	runner := engine.NewRunner(eng, cfg.Simulation, tuning.CommandQueueBuffer, m, appLogger)

	appLogger.Info("Bootstrapping WebSocket hub...")
	hub := network.NewHub(runner, tuning, appLogger, m)
	runner.Subscribe(hub.BroadcastSnapshot)
	go hub.Run(ctx)
	go runner.Start(ctx)

	api := network.NewAPI(network.APIDeps{
		Exec:        runner,
		EventLog:    eventLog,
		Recaps:      storage.NewReconstructor(eventRepo),
		MissionID:   missionID,
		Leaderboard: scores,
		Hub:         hub,
		Logger:      appLogger,
		Metrics:     m,
	})
	handler := network.NewHandler(ctx, hub, api,
		network.NewRateLimiter(ctx, cfg.RateLimit, appLogger),
		network.NewCORS(cfg.Server, appLogger),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(appLogger.Slog().Handler(), slog.LevelWarn),
	}

	go func() {
		appLogger.Info("HTTP API & WS server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", "error", err)
			cancel()
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", "error", err)
	}
	runner.Stop()
	cancel()
	<-runner.Done()

	if rec := optimization.Analyze(m.Snapshot()); len(rec.Notes) > 0 {
		tuned := optimization.ApplyRecommendations(tuning, rec)
		appLogger.Warn("Tuning suggestions for the next run",
			"notes", rec.Notes,
			"command_queue", tuned.CommandQueueBuffer,
			"broadcast_buffer", tuned.BroadcastChannelBuffer,
			"db_max_open", tuned.DBMaxOpenConns,
		)
	}
	appLogger.Info("Server stopped", "events_logged", eventLog.Total())
}

// buildLeaderboard wires the local store and, when configured, the remote
// Postgres store and the Redis cache. Neither is required: failures are
// logged and the service runs local-only or uncached.
func buildLeaderboard(ctx context.Context, cfg *config.Config, db *sql.DB, tuning *optimization.Config, log *logger.Logger, m *metrics.Collector) (*leaderboard.Service, func()) {
	var closers []func()
	local := storage.NewSQLiteScoreStore(db)

	var remote storage.ScoreStore
	if cfg.Postgres.Enabled {
		maxOpen, maxIdle := cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns
		if maxOpen <= 0 {
			maxOpen, maxIdle = tuning.DBMaxOpenConns, tuning.DBMaxIdleConns
		}
		pg, err := storage.OpenPostgres(ctx, cfg.Postgres.URL, maxOpen, maxIdle)
		if err != nil {
			log.Warn("Remote leaderboard unavailable, scores stay local", "error", err)
		} else {
			log.Info("Connected to remote leaderboard")
			remote = storage.NewPostgresScoreStore(pg)
			closers = append(closers, func() { pg.Close() })
		}
	}

	var lbCache leaderboard.Cache
	if cfg.Redis.Enabled {
		client, err := cache.Connect(ctx, cfg.Redis, tuning.RedisPoolSize)
		if err != nil {
			log.Warn("Redis unavailable, leaderboard is uncached", "error", err)
		} else {
			log.Info("Connected to Redis leaderboard cache")
			lbCache = cache.NewLeaderboardCache(client, cfg.Redis.CacheTTL)
			closers = append(closers, func() { client.Close() })
		}
	}

	svc := leaderboard.NewService(remote, local, lbCache, log, m)
	return svc, func() {
		for _, c := range closers {
			c()
		}
	}
}
