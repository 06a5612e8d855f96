package network

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/engine"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/infra/storage"
	"github.com/MRamiBalles/BioHome/server/internal/leaderboard"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
	"github.com/MRamiBalles/BioHome/server/internal/platform/optimization"
)

// Leaderboard is the score service behind /api/leaderboard.
type Leaderboard interface {
	Submit(ctx context.Context, entry storage.ScoreEntry) (storage.ScoreEntry, error)
	Top(ctx context.Context, n int) (leaderboard.Result, error)
}

// RecapBuilder rebuilds a mission debrief from the persisted log.
type RecapBuilder interface {
	BuildRecap(ctx context.Context, missionID string, sinceDay int) (*storage.MissionRecap, error)
}

// API serves the REST surface.
type API struct {
	exec        Executor
	eventLog    *events.EventLog
	recaps      RecapBuilder
	missionID   string
	leaderboard Leaderboard
	hub         *Hub
	logger      *logger.Logger
	metrics     *metrics.Collector
	started     time.Time
}

// APIDeps groups the API's collaborators. Recaps, Leaderboard and Hub may
// be nil; their routes then answer 503 or omit the data.
type APIDeps struct {
	Exec        Executor
	EventLog    *events.EventLog
	Recaps      RecapBuilder
	MissionID   string
	Leaderboard Leaderboard
	Hub         *Hub
	Logger      *logger.Logger
	Metrics     *metrics.Collector
}

// NewAPI creates the REST handlers.
func NewAPI(d APIDeps) *API {
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Get()
	}
	return &API{
		exec:        d.Exec,
		eventLog:    d.EventLog,
		recaps:      d.Recaps,
		missionID:   d.MissionID,
		leaderboard: d.Leaderboard,
		hub:         d.Hub,
		logger:      d.Logger.With("component", "api"),
		metrics:     d.Metrics,
		started:     time.Now(),
	}
}

// RegisterRoutes sets up the REST routes.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/command", a.HandleCommand)
	mux.HandleFunc("/api/state", a.HandleState)
	mux.HandleFunc("/api/catalog", a.HandleCatalog)
	mux.HandleFunc("/api/log", a.HandleLog)
	mux.HandleFunc("/api/recap", a.HandleRecap)
	mux.HandleFunc("/api/leaderboard", a.HandleLeaderboard)
	mux.HandleFunc("/metrics", a.metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", a.metrics.PrometheusHandler())
	mux.HandleFunc("/metrics/recommendations", a.HandleRecommendations)
	mux.HandleFunc("/healthz", a.HandleHealth)
}

// HandleCommand runs one command.
// POST /api/command {"type": "...", "payload": {...}}
func (a *API) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	res, err := Execute(ctx, a.exec, req)
	status := http.StatusOK
	if err != nil {
		status = apperrors.HTTPStatus(err)
	}
	writeJSON(w, status, res)
}

// HandleState returns the current snapshot.
// GET /api/state
func (a *API) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var snap engine.Snapshot
	err := a.exec.Do(r.Context(), func(e *engine.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	if err != nil {
		a.fail(w, apperrors.WrapInternal("engine unavailable", err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleCatalog lists the module catalog and crew roles.
// GET /api/catalog
func (a *API) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type roleInfo struct {
		Role  habitat.Role      `json:"role"`
		Bonus habitat.RoleBonus `json:"bonus"`
	}
	roles := make([]roleInfo, len(habitat.Roles))
	for i, role := range habitat.Roles {
		roles[i] = roleInfo{Role: role, Bonus: habitat.BonusFor(role)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modules":     habitat.Catalog(),
		"roles":       roles,
		"max_crew":    habitat.MaxCrew,
		"experiments": habitat.ExperimentNames,
	})
}

// LogEntry is one mission log line for the API.
type LogEntry struct {
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	GameDay   int              `json:"game_day"`
	Type      events.EventType `json:"type"`
	Severity  events.Severity  `json:"severity"`
	Line      string           `json:"line"`
}

// LogResponse is the API response for the mission log.
type LogResponse struct {
	MissionID   string     `json:"mission_id"`
	Total       int        `json:"total"`
	FilteredBy  string     `json:"filtered_by,omitempty"`
	GeneratedAt string     `json:"generated_at"`
	Entries     []LogEntry `json:"entries"`
}

// HandleLog returns the retained mission log.
// GET /api/log?day=N&type=SOLAR_FLARE
func (a *API) HandleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	var (
		selected []events.GameEvent
		filter   string
	)
	switch {
	case q.Get("day") != "":
		day, err := strconv.Atoi(q.Get("day"))
		if err != nil || day < 0 {
			a.fail(w, apperrors.Validationf("invalid day %q", q.Get("day")))
			return
		}
		selected = a.eventLog.GetByDay(day)
		filter = "Day " + strconv.Itoa(day)
	case q.Get("type") != "":
		selected = a.eventLog.GetByType(events.EventType(q.Get("type")))
		filter = q.Get("type")
	default:
		selected = a.eventLog.Recent()
	}

	entries := make([]LogEntry, len(selected))
	for i, e := range selected {
		entries[i] = LogEntry{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format("15:04:05"),
			GameDay:   e.GameDay,
			Type:      e.Type,
			Severity:  e.Severity,
			Line:      e.Line(),
		}
	}

	writeJSON(w, http.StatusOK, LogResponse{
		MissionID:   a.missionID,
		Total:       a.eventLog.Total(),
		FilteredBy:  filter,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Entries:     entries,
	})
}

// HandleRecap rebuilds the mission debrief from persisted events.
// GET /api/recap?since_day=N&mission_id=...
func (a *API) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.recaps == nil {
		jsonError(w, "Mission history is not persisted", http.StatusServiceUnavailable)
		return
	}

	missionID := r.URL.Query().Get("mission_id")
	if missionID == "" {
		missionID = a.missionID
	}
	since := 0
	if s := r.URL.Query().Get("since_day"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			a.fail(w, apperrors.Validationf("invalid since_day %q", s))
			return
		}
		since = n
	}

	recap, err := a.recaps.BuildRecap(r.Context(), missionID, since)
	if err != nil {
		a.fail(w, apperrors.WrapInternal("failed to build recap", err))
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

type submitScoreRequest struct {
	Username     string  `json:"username"`
	Score        int     `json:"score"`
	SurvivalDays float64 `json:"survival_days"`
	Cost         float64 `json:"cost"`
}

// HandleLeaderboard reads (GET ?limit=N) or submits (POST) scores.
func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if a.leaderboard == nil {
		jsonError(w, "Leaderboard is not configured", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit := leaderboard.DefaultLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 100 {
				a.fail(w, apperrors.Validationf("limit must be between 1 and 100"))
				return
			}
			limit = n
		}
		res, err := a.leaderboard.Top(r.Context(), limit)
		if err != nil {
			a.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodPost:
		var req submitScoreRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
			jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		entry, err := a.leaderboard.Submit(r.Context(), storage.ScoreEntry{
			Username:     req.Username,
			Score:        req.Score,
			SurvivalDays: req.SurvivalDays,
			Cost:         req.Cost,
		})
		if err != nil {
			a.fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRecommendations suggests tuning changes from the live metrics.
// GET /metrics/recommendations
func (a *API) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optimization.Analyze(a.metrics.Snapshot()))
}

// HandleHealth reports liveness.
// GET /healthz
func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if a.hub != nil {
		clients = a.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"mission_id": a.missionID,
		"clients":    clients,
		"uptime_s":   int64(time.Since(a.started).Seconds()),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

func (a *API) fail(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	jsonError(w, err.Error(), status)
}

// jsonError sends an error response.
func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
