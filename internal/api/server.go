// Package api provides the HTTP server for Nutrio.
// It exposes the progression engine to the app backend over JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nutrio/nutrio/internal/app/notify"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
	"github.com/nutrio/nutrio/internal/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Server is the Nutrio HTTP API server.
type Server struct {
	progression    *progression.Service
	notifications  *notify.Service
	health         *health.Checker
	log            zerolog.Logger
	limiter        *rateLimiter
	corsOrigins    []string
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(svc *progression.Service, notes *notify.Service, log zerolog.Logger) *Server {
	return &Server{
		progression:   svc,
		notifications: notes,
		log:           log.With().Str("component", "api").Logger(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth sets the checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigins restricts cross-origin access. An empty list allows any origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetRateLimit limits mutating requests per user. rps <= 0 disables limiting.
func (s *Server) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = newRateLimiter(rps, burst)
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsHandler().Handler)
	r.Use(instrument)

	r.Get("/health", s.handleHealth)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/levels", s.handleLevels)
		r.Get("/catalog", s.handleCatalog)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/progression", s.handleStatus)
			r.Get("/notifications", s.handleNotifications)

			r.Group(func(r chi.Router) {
				if s.limiter != nil {
					r.Use(s.limiter.Handler)
				}
				r.Post("/rewards", s.handleGrant)
				r.Post("/achievements/{achievementID}", s.handleUnlock)
				r.Post("/recent-unlocks/ack", s.handleAckUnlocks)
				r.Post("/rehydrate", s.handleRehydrate)
				r.Post("/activity", s.handleActivity)
				r.Post("/notifications/{id}/shown", s.handleNotificationShown)
			})
		})
	})

	return r
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    errorType(status),
		},
	})
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "error"
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownMultiplier),
		errors.Is(err, domain.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSource),
		errors.Is(err, domain.ErrUnknownAchievement),
		errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStaleState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side failures and writes the mapped error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, code, err.Error())
}
