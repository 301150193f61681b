// internal/httpserver/ws.go
//
// Live event stream for a single game.
//   - GET /api/game/{id}/ws upgrades to a websocket.
//   - The server sends {"type":"state","view":...} first, then every engine
//     event (flipped, matched, mismatched, reverted, tick, won). When the game
//     is dropped (restart, idle reap, shutdown) a final "closed" event is sent
//     and the socket is closed.
//   - Clients may send {"type":"click","target":"card:3"}; replies that only
//     concern the sender (ignored, error, restart) go to that socket alone.
//
// Slow clients lose events rather than stalling the game: publish never blocks.

package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/game"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

type wsClient struct {
	conn *websocket.Conn
	send chan any
}

// hub tracks websocket subscribers per game ID.
type hub struct {
	mu   sync.RWMutex
	subs map[string]map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*wsClient]struct{})}
}

func (h *hub) subscribe(id string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[*wsClient]struct{})
	}
	h.subs[id][c] = struct{}{}
}

// unsubscribe removes c and closes its send channel.
func (h *hub) unsubscribe(id string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[id]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.subs, id)
	}
}

// publish delivers msg to every subscriber of id without blocking.
func (h *hub) publish(id string, msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subs[id] {
		select {
		case c.send <- msg:
		default:
			log.Debug().Str("gameId", id).Msg("dropping event for slow client")
		}
	}
}

// reply sends msg to c alone, if c is still subscribed to id.
func (h *hub) reply(id string, c *wsClient, msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.subs[id][c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// disconnect closes every subscriber of id after its queued messages.
func (h *hub) disconnect(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs[id] {
		close(c.send)
	}
	delete(h.subs, id)
}

func (h *hub) count(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[id])
}

// closeAll disconnects every subscriber.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		for c := range set {
			close(c.send)
		}
		delete(h.subs, id)
	}
}

// wsIn is a client → server message.
type wsIn struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// wsOut is a server → client message that is not an engine event.
type wsOut struct {
	Type    string     `json:"type"`
	Outcome string     `json:"outcome,omitempty"`
	Error   string     `json:"error,omitempty"`
	GameID  string     `json:"gameId,omitempty"`
	Token   string     `json:"token,omitempty"`
	View    *game.View `json:"view,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if s.opts.ClientOrigin != "" && origin == s.opts.ClientOrigin {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// handleWS streams a game's events and accepts clicks over the socket.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("websocket upgrade")
		return
	}

	c := &wsClient{conn: conn, send: make(chan any, sendBuffer)}
	view := g.View()
	c.send <- wsOut{Type: "state", View: &view}
	s.hub.subscribe(g.ID, c)
	// The store drops a game before closing it, so a game that vanished before
	// subscribe is caught here rather than leaving the socket silent.
	if _, err := s.opts.Store.Get(r.Context(), g.ID); err != nil {
		s.hub.disconnect(g.ID)
	}
	log.Debug().Str("gameId", g.ID).Msg("websocket connected")

	go c.writePump()
	s.readPump(g, c)
}

func (s *Server) readPump(g *game.Game, c *wsClient) {
	defer func() {
		s.hub.unsubscribe(g.ID, c)
		_ = c.conn.Close()
		log.Debug().Str("gameId", g.ID).Msg("websocket closed")
	}()

	for {
		var msg wsIn
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "click" {
			continue
		}
		s.wsClick(g, c, msg.Target)
	}
}

// wsClick handles a click from the socket. Engine events reach the client
// through the hub; ignored clicks, errors and restarts are answered to c alone.
func (s *Server) wsClick(g *game.Game, c *wsClient, raw string) {
	target, err := game.ParseTarget(raw)
	if err != nil {
		s.hub.reply(g.ID, c, wsOut{Type: "error", Error: "unknown_target"})
		return
	}
	cmd, ok := game.Dispatch(target, g.View())
	if !ok {
		s.hub.reply(g.ID, c, wsOut{Type: "ignored", Outcome: string(game.OutcomeIgnored)})
		return
	}

	if cmd.Kind == game.CommandRestart {
		next, err := s.newGame(context.Background(), g.Mode)
		if err != nil {
			s.hub.reply(g.ID, c, wsOut{Type: "error", Error: "create_failed"})
			return
		}
		tok, _, err := s.signSession(next.ID)
		if err != nil {
			_ = s.opts.Store.Delete(context.Background(), next.ID)
			s.hub.reply(g.ID, c, wsOut{Type: "error", Error: "sign_failed"})
			return
		}
		view := next.View()
		s.hub.reply(g.ID, c, wsOut{Type: "restart", GameID: next.ID, Token: tok, View: &view})
		// Dropping the old game sends "closed" and ends this socket.
		_ = s.opts.Store.Delete(context.Background(), g.ID)
		return
	}

	out, err := s.apply(g, cmd)
	if err != nil {
		s.hub.reply(g.ID, c, wsOut{Type: "error", Error: errorCode(err)})
		return
	}
	if out == string(game.OutcomeIgnored) {
		s.hub.reply(g.ID, c, wsOut{Type: "ignored", Outcome: out})
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
