// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily" mode and the scoreboard.
//   - POST /api/daily/new    → start a game on today's shared board
//   - GET  /api/leaderboard  → fastest finished games for a mode (and date)
//
// Every daily game on the same UTC date is dealt from the same seed, so
// players race on an identical layout. Classic games rank across all dates
// unless ?date= narrows them; daily games default to today.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/daily"
	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/results"
)

const leaderboardLimit = 20

// mountDaily registers the daily and leaderboard routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Post("/daily/new", s.handleDailyNew)
	r.Get("/leaderboard", s.handleLeaderboard)
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	newGameRes
	Date string `json:"date"`
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	res, ok := s.issue(w, r, game.ModeDaily)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(dailyNewRes{newGameRes: *res, Date: daily.DateKey(s.opts.Clock.Now())})
}

// lbRes is returned by /leaderboard.
type lbRes struct {
	Mode string           `json:"mode"`
	Date string           `json:"date,omitempty"`
	Top  []results.Result `json:"top"`
}

// handleLeaderboard returns the top results for ?mode= (default classic),
// filtered by ?date= when given. ?limit= caps the list at leaderboardLimit.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := game.Mode(q.Get("mode"))
	if mode == "" {
		mode = game.ModeClassic
	}
	if mode != game.ModeClassic && mode != game.ModeDaily {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}
	date := q.Get("date")
	if date == "" && mode == game.ModeDaily {
		date = daily.DateKey(s.opts.Clock.Now())
	}
	limit := leaderboardLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n < limit {
		limit = n
	}

	res := lbRes{Mode: string(mode), Date: date, Top: []results.Result{}}
	if s.opts.Results == nil {
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	rows, err := s.opts.Results.Leaderboard(r.Context(), string(mode), date, limit)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	res.Top = append(res.Top, rows...)
	_ = json.NewEncoder(w).Encode(res)
}
