package network

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// RateLimiter throttles REST requests per client IP.
type RateLimiter struct {
	config  config.RateLimitConfig
	clients map[string]*rate.Limiter
	mu      sync.RWMutex
	logger  *logger.Logger
}

// NewRateLimiter creates a limiter. Idle clients are forgotten every minute
// until ctx is cancelled.
func NewRateLimiter(ctx context.Context, cfg config.RateLimitConfig, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.Discard()
	}
	rl := &RateLimiter{
		config:  cfg,
		clients: make(map[string]*rate.Limiter),
		logger:  log.With("middleware", "rate_limit"),
	}
	if cfg.Enabled {
		go rl.cleanupClients(ctx, time.Minute)
	}
	return rl
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.clients[ip]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists = rl.clients[ip]; !exists {
		limiter = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize)
		rl.clients[ip] = limiter
	}
	return limiter
}

func (rl *RateLimiter) cleanupClients(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			// A full bucket means no recent traffic.
			for ip, limiter := range rl.clients {
				if limiter.TokensAt(now) >= float64(rl.config.BurstSize) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled || r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			rl.logger.Warn("Rate limit exceeded",
				"client_ip", ip,
				"method", r.Method,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "1")
			jsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i != -1 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}
	// Strip port from RemoteAddr (e.g. "192.168.1.1:12345" -> "192.168.1.1")
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NewCORS wraps the server's allowed origins in rs/cors.
func NewCORS(cfg config.ServerConfig, log *logger.Logger) *cors.Cors {
	if log == nil {
		log = logger.Discard()
	}
	methods := []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	log.Info("CORS middleware configured",
		"component", "cors",
		"allowed_origins", cfg.AllowedOrigins,
		"allowed_methods", methods,
		"debug_mode", cfg.CORSDebug,
	)
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Content-Type"},
		Debug:          cfg.CORSDebug,
	})
}

// NewHandler assembles the full HTTP surface: WebSocket, REST, rate
// limiting and CORS.
func NewHandler(ctx context.Context, hub *Hub, api *API, rl *RateLimiter, c *cors.Cors) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS(ctx))
	api.RegisterRoutes(mux)

	var h http.Handler = mux
	if rl != nil {
		h = rl.Middleware(h)
	}
	if c != nil {
		h = c.Handler(h)
	}
	return h
}
