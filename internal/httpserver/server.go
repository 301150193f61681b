// internal/httpserver/server.go
//
// HTTP server wiring for the pairs backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/static/*", "/health", "/version", "/qr".
//   - Game endpoints: POST /api/game/new, GET /api/game/{id},
//     POST /api/game/{id}/click, GET /api/game/{id}/ws.
//   - Daily board + leaderboard endpoints (routes_daily.go).
//
// Notes:
//   - Games live in the session store; the engine is the only source of truth and
//     handlers only ever return its View (face-down symbols hidden).
//   - Per-game session tokens (session.go) gate every /api/game/{id} route.
//   - Finished games are written to the results scoreboard when one is configured.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/assets"
	"github.com/robalobadob/pairs/internal/daily"
	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/results"
	"github.com/robalobadob/pairs/internal/store"
	"github.com/robalobadob/pairs/internal/symbols"
)

// Options carries the server's collaborators and settings.
type Options struct {
	Store        store.Store
	Results      *results.Store // optional
	Catalog      *symbols.Catalog
	Clock        quartz.Clock
	Cards        int
	RevertDelay  time.Duration
	JWTSecret    string
	TokenTTL     time.Duration
	DailySalt    string
	PublicURL    string
	ClientOrigin string
	Version      string
}

// Server bundles router, session store and scoreboard.
type Server struct {
	r    *chi.Mux
	opts Options
	hub  *hub
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Catalog == nil {
		opts.Catalog = symbols.Default()
	}
	if opts.Cards == 0 {
		opts.Cards = 16
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
		log.Warn().Msg("no jwt secret configured, using development default")
	}

	s := &Server{r: chi.NewRouter(), opts: opts, hub: newHub()}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// --- pages & diagnostics ---
	s.r.Get("/", s.handleIndex)
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets.Web()))))
	s.r.Get("/qr", s.handleQR)
	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"service": "pairs", "version": s.opts.Version})
		})
		r.Get("/debug/symbols", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"symbols": s.opts.Catalog.Count(), "games": s.opts.Store.Len()})
		})
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jsonContentType)
			r.Use(chimw.Timeout(10 * time.Second))

			r.Post("/game/new", s.handleNewGame)
			s.mountDaily(r)

			r.With(s.requireSession).Get("/game/{id}", s.handleGetGame)
			r.With(s.requireSession).Post("/game/{id}/click", s.handleClick)
		})
		// No timeout here: the socket lives as long as the game.
		r.With(s.requireSession).Get("/game/{id}/ws", s.handleWS)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Handler exposes the router (used by the serve command and tests).
func (s *Server) Handler() http.Handler { return s.r }

// Close drops every game and its websocket subscribers.
func (s *Server) Close() {
	s.hub.closeAll()
	if m, ok := s.opts.Store.(interface{ CloseAll() }); ok {
		m.CloseAll()
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.Index()
	if err != nil {
		http.Error(w, "missing client", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /api/game/new.
type newGameReq struct {
	Mode game.Mode `json:"mode"` // "classic" (default) | "daily"
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	Token  string    `json:"token"`
	View   game.View `json:"view"`
}

// newGame creates, stores and wires a game of the given mode.
func (s *Server) newGame(ctx context.Context, mode game.Mode) (*game.Game, error) {
	id := uuid.NewString()
	opts := game.Options{
		ID:          id,
		Mode:        mode,
		Symbols:     s.opts.Catalog.All(),
		Cards:       s.opts.Cards,
		RevertDelay: s.opts.RevertDelay,
		Clock:       s.opts.Clock,
		OnEvent:     func(ev game.Event) { s.onGameEvent(id, ev) },
	}
	if mode == game.ModeDaily {
		opts.Seed = daily.Seed(s.opts.Clock.Now(), s.opts.DailySalt)
	}

	g, err := game.New(opts)
	if err != nil {
		return nil, err
	}
	if err := s.opts.Store.Save(ctx, g); err != nil {
		g.Close()
		return nil, err
	}
	log.Info().Str("gameId", g.ID).Str("mode", string(g.Mode)).Int("cards", s.opts.Cards).Msg("game created")
	return g, nil
}

// issue creates a game and its session token, setting the session cookie.
func (s *Server) issue(w http.ResponseWriter, r *http.Request, mode game.Mode) (*newGameRes, bool) {
	if mode == "" {
		mode = game.ModeClassic
	}
	if mode != game.ModeClassic && mode != game.ModeDaily {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return nil, false
	}
	g, err := s.newGame(r.Context(), mode)
	if err != nil {
		log.Error().Err(err).Msg("create game")
		writeError(w, http.StatusInternalServerError, "create_failed")
		return nil, false
	}
	tok, exp, err := s.signSession(g.ID)
	if err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return nil, false
	}
	s.setSessionCookie(w, g.ID, tok, exp)
	return &newGameRes{GameID: g.ID, Token: tok, View: g.View()}, true
}

// handleNewGame creates a game. An empty body starts a classic game; a
// malformed one is rejected.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	res, ok := s.issue(w, r, req.Mode)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleGetGame returns the current view.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(gameFrom(r.Context()).View())
}

// clickReq/Res payloads for POST /api/game/{id}/click.
type clickReq struct {
	Target string `json:"target"` // "card:<i>" | "cell:<row>,<col>" | "start"
}
type clickRes struct {
	Outcome string    `json:"outcome"`
	View    game.View `json:"view"`
}

// handleClick routes a click through the dispatcher to the state machine.
// A restart answers with a fresh game instead.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g := gameFrom(r.Context())

	target, err := game.ParseTarget(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_target")
		return
	}
	cmd, ok := game.Dispatch(target, g.View())
	if !ok {
		_ = json.NewEncoder(w).Encode(clickRes{Outcome: string(game.OutcomeIgnored), View: g.View()})
		return
	}

	if cmd.Kind == game.CommandRestart {
		res, ok := s.issue(w, r, g.Mode)
		if !ok {
			return
		}
		_ = s.opts.Store.Delete(r.Context(), g.ID)
		_ = json.NewEncoder(w).Encode(res)
		return
	}

	outcome, err := s.apply(g, cmd)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorCode(err))
		return
	}
	_ = json.NewEncoder(w).Encode(clickRes{Outcome: outcome, View: g.View()})
}

// apply runs a flip or start command against g.
func (s *Server) apply(g *game.Game, cmd game.Command) (string, error) {
	switch cmd.Kind {
	case game.CommandFlip:
		out, err := g.Flip(cmd.Index)
		return string(out), err
	case game.CommandStart:
		if g.Start() {
			return string(game.EventStarted), nil
		}
		return string(game.OutcomeIgnored), nil
	}
	return "", errors.New("unsupported command " + cmd.Kind.String())
}

// onGameEvent fans events out to websocket subscribers and records wins.
// A closed game's sockets are disconnected after the final event.
func (s *Server) onGameEvent(id string, ev game.Event) {
	s.hub.publish(id, ev)
	switch ev.Kind {
	case game.EventWon:
		s.recordResult(id, ev)
	case game.EventClosed:
		s.hub.disconnect(id)
	}
}

func (s *Server) recordResult(id string, ev game.Event) {
	log.Info().Str("gameId", id).Int("moves", ev.View.Moves).Int("elapsed", ev.View.Elapsed).Msg("game won")
	if s.opts.Results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.opts.Results.Record(ctx, results.Result{
		GameID:         id,
		Mode:           string(ev.View.Mode),
		Date:           daily.DateKey(ev.At),
		Cards:          len(ev.View.Cards),
		Moves:          ev.View.Moves,
		ElapsedSeconds: ev.View.Elapsed,
		FinishedAt:     ev.At,
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("record result")
	}
}

// ------------------------------- helpers -----------------------------------

// writeError writes a JSON error body like {"error":"not_found"}.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// errorCode maps engine errors to stable API codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrCardIndex):
		return "card_index"
	case errors.Is(err, game.ErrUnknownTarget):
		return "unknown_target"
	case errors.Is(err, game.ErrConfiguration):
		return "configuration"
	}
	return "bad_request"
}
