// Package leaderboard ranks finished missions. Scores go to the shared
// remote store when it is reachable and to the local store otherwise.
package leaderboard

import (
	"context"
	"strings"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/infra/storage"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
)

// AnonymousName replaces an empty username.
const AnonymousName = "Anonymous"

// DefaultLimit is the page size when none is given.
const DefaultLimit = 10

// Cache is the ranked-list cache the service reads through.
type Cache interface {
	GetTop(ctx context.Context, n int) ([]storage.ScoreEntry, error)
	SetTop(ctx context.Context, depth int, entries []storage.ScoreEntry) error
	Invalidate(ctx context.Context) error
}

// RankedEntry is a score with its 1-based position.
type RankedEntry struct {
	Rank int `json:"rank"`
	storage.ScoreEntry
}

// Result is a ranked list and where it came from.
type Result struct {
	Entries []RankedEntry `json:"entries"`
	Source  string        `json:"source"` // "cache", "remote" or "local"
}

// Service submits and reads scores.
type Service struct {
	remote  storage.ScoreStore
	local   storage.ScoreStore
	cache   Cache
	logger  *logger.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewService wires the stores. remote and cache may be nil; local is
// required.
func NewService(remote, local storage.ScoreStore, cache Cache, log *logger.Logger, m *metrics.Collector) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.Get()
	}
	return &Service{
		remote:  remote,
		local:   local,
		cache:   cache,
		logger:  log.With("component", "leaderboard"),
		metrics: m,
		now:     time.Now,
	}
}

// Submit records a finished mission. A remote failure falls back to the
// local store and is not an error.
func (s *Service) Submit(ctx context.Context, entry storage.ScoreEntry) (storage.ScoreEntry, error) {
	entry.Username = strings.TrimSpace(entry.Username)
	if entry.Username == "" {
		entry.Username = AnonymousName
	}
	if entry.Score < 0 || entry.SurvivalDays < 0 || entry.Cost < 0 {
		return entry, apperrors.Validation("score, survival time and cost must not be negative")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	fallback := false
	if s.remote != nil {
		if err := s.remote.Insert(ctx, entry); err != nil {
			s.logger.Warn("remote leaderboard unavailable, storing locally", "error", err)
			fallback = true
		}
	} else {
		fallback = true
	}

	if fallback {
		if err := s.local.Insert(ctx, entry); err != nil {
			return entry, apperrors.WrapInternal("failed to store score", err)
		}
	}
	s.metrics.RecordScoreSubmit(fallback)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate leaderboard cache", "error", err)
		}
	}
	s.logger.Info("score submitted", "username", entry.Username, "score", entry.Score, "local", fallback)
	return entry, nil
}

// Top returns the n best scores: cached if fresh, else remote, else local.
func (s *Service) Top(ctx context.Context, n int) (Result, error) {
	if n <= 0 {
		n = DefaultLimit
	}

	if s.cache != nil {
		if entries, err := s.cache.GetTop(ctx, n); err == nil {
			s.metrics.RecordLeaderboardCacheHit()
			return Result{Entries: rank(entries), Source: "cache"}, nil
		}
	}

	var (
		entries []storage.ScoreEntry
		source  = "remote"
		err     error
	)
	if s.remote != nil {
		entries, err = s.remote.Top(ctx, n)
	}
	if s.remote == nil || err != nil {
		if err != nil {
			s.logger.Warn("remote leaderboard unavailable, reading local", "error", err)
		}
		source = "local"
		entries, err = s.local.Top(ctx, n)
		if err != nil {
			return Result{}, apperrors.WrapInternal("failed to read leaderboard", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetTop(ctx, n, entries); err != nil {
			s.logger.Warn("failed to cache leaderboard", "error", err)
		}
	}
	return Result{Entries: rank(entries), Source: source}, nil
}

func rank(entries []storage.ScoreEntry) []RankedEntry {
	ranked := make([]RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = RankedEntry{Rank: i + 1, ScoreEntry: e}
	}
	return ranked
}
