package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

// mountDevice registers the /me routes. DELETE /me/session only exists
// outside production.
func (s *Server) mountDevice(r chi.Router) {
	r.Get("/me/history", s.handleHistory)
	if !s.opts.Production {
		r.Delete("/me/session", s.handleReset)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sum, err := s.play.Player(deviceID(r)).Summary(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("history summary")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.play.Player(deviceID(r)).Reset(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("reset device")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
