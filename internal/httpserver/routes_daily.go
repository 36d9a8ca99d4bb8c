// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily card games.
// Exposes, per mode (monsters | spells | traps):
//   - POST /daily/{mode}/start → open or restore today's game
//   - POST /daily/{mode}/guess → submit a card id for today's game
//   - GET  /daily/{mode}/stats → global counters for today's card and the mode
//
// Each device can finish one game per mode per day; a finished game comes
// back locked with its board. The secret is only part of a response once
// the game is over.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/ygodle/internal/daily"
	"github.com/robalobadob/ygodle/internal/game"
	"github.com/robalobadob/ygodle/internal/play"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily/{mode}", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/guess", s.handleGuess)
		r.Get("/stats", s.handleStats)
	})
}

// handleStart returns the device's view of today's game.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	v, err := s.play.Player(deviceID(r)).Start(r.Context(), mode)
	if err != nil {
		s.playError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// guessReq is the request payload for /daily/{mode}/guess.
type guessReq struct {
	CardID int `json:"cardId"`
}

// handleGuess scores one guess. A failure to update the global counters is
// logged and does not fail the request: the device's own state is saved.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == 0 {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, err := s.play.Player(deviceID(r)).Guess(r.Context(), mode, req.CardID)
	if errors.Is(err, play.ErrStatsUnavailable) && out != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("mode", string(mode)).Msg("global stats not updated")
		err = nil
	}
	if err != nil {
		s.playError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type statsRes struct {
	Today      *daily.Card     `json:"today"`
	Mode       daily.ModeStats `json:"mode"`
	TotalCards int             `json:"totalCards"`
}

// handleStats returns the latest card's counters and the mode aggregates.
// The card id is blanked so stats never give the answer away.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	mode, ok := modeParam(w, r)
	if !ok {
		return
	}
	res := statsRes{TotalCards: s.play.Catalog().Count(mode)}
	latest, err := s.daily.Latest(r.Context(), mode)
	switch {
	case errors.Is(err, daily.ErrNotAssigned):
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("load daily card")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	default:
		latest.CardID = 0
		res.Today = latest
	}
	if res.Mode, err = s.daily.ModeStats(r.Context(), mode); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load mode stats")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// playError maps orchestrator errors onto HTTP responses.
func (s *Server) playError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, play.ErrNoSecret):
		writeError(w, http.StatusNotFound, "no_daily_card")
	case errors.Is(err, play.ErrUnknownCard):
		writeError(w, http.StatusBadRequest, "unknown_card")
	case errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, "locked")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("device", deviceID(r)).Msg("daily game")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
