// internal/httpserver/server.go
//
// HTTP server wiring for the YGOdle backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     JSON, CORS, access logs).
//   - Public endpoints: "/", "/health", "/clock", "/modes", card search.
//   - Daily game endpoints under /daily/{mode} (device cookie, no accounts).
//   - Device endpoints under /me and the admin rotation trigger.
//
// Notes:
//   - Every game request is tied to a device id carried in a signed cookie;
//     a device without one gets a fresh id on its first request.
//   - Errors are JSON bodies of the form {"error":"code"}.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ygodle/internal/daily"
	"github.com/robalobadob/ygodle/internal/game"
	"github.com/robalobadob/ygodle/internal/play"
)

// Options carries the HTTP-facing configuration.
type Options struct {
	ClientOrigin string
	JWTSecret    string
	AdminKeyHash string // bcrypt; admin routes answer 404 when empty
	Production   bool
}

// Server bundles the router and the game services it exposes.
type Server struct {
	r       *chi.Mux
	play    *play.Service
	daily   *daily.Store
	rotator *daily.Rotator
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *play.Service, ds *daily.Store, rot *daily.Rotator, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	s := &Server{r: chi.NewRouter(), play: svc, daily: ds, rotator: rot, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"ygodle","endpoints":["/health","/clock","/modes","/cards/{mode}/search","/daily/{mode}/*","/me/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Get("/clock", s.handleClock)
	s.r.Get("/modes", s.handleModes)
	s.r.Get("/cards/{mode}/search", s.handleSearch)

	s.mountDaily(s.r.With(s.withDevice))
	s.mountDevice(s.r.With(s.withDevice))
	s.r.With(s.requireAdmin).Post("/admin/rotate", s.handleRotate)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Handler exposes the router (http.Server and tests).
func (s *Server) Handler() http.Handler { return s.r }

// ------------------------------ public --------------------------------------

type clockRes struct {
	DayKey           string    `json:"dayKey"`
	DayNumber        int       `json:"dayNumber"`
	Now              time.Time `json:"now"`
	NextRollover     time.Time `json:"nextRollover"`
	SecondsRemaining int64     `json:"secondsRemaining"`
}

// handleClock reports the current game day and the countdown to the next card.
func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	clock := s.play.Clock()
	now := clock.Now()
	day := clock.EffectiveDay(now)
	next := clock.NextRollover(now)
	writeJSON(w, http.StatusOK, clockRes{
		DayKey:           day.Key,
		DayNumber:        day.Ordinal,
		Now:              now.UTC(),
		NextRollover:     next.UTC(),
		SecondsRemaining: int64(next.Sub(now) / time.Second),
	})
}

type modeRes struct {
	Mode  game.Mode `json:"mode"`
	Cards int       `json:"cards"`
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	out := make([]modeRes, 0, len(game.Modes))
	for _, m := range game.Modes {
		out = append(out, modeRes{Mode: m, Cards: s.play.Catalog().Count(m)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSearch backs the guess autocomplete.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 0)
	writeJSON(w, http.StatusOK, s.play.Catalog().Search(mode, r.URL.Query().Get("q"), limit))
}

// ------------------------------ admin ---------------------------------------

// handleRotate assigns today's cards now instead of waiting for the scheduler.
func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	day := s.play.Clock().Today()
	created, err := s.rotator.Rotate(r.Context(), day)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("manual rotation")
		writeError(w, http.StatusInternalServerError, "rotate_failed")
		return
	}
	if created == nil {
		created = []daily.Card{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"day": day, "assigned": created})
}

// ------------------------------ helpers -------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func modeParam(w http.ResponseWriter, r *http.Request) (game.Mode, bool) {
	mode, err := game.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return "", false
	}
	return mode, true
}
