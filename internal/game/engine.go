// internal/game/engine.go
//
// State machine for a single pairs game.
// Responsibilities:
//   - Generate the board (fair shuffle, even card count).
//   - Apply flip requests: ignore illegal ones, count accepted ones as moves.
//   - Resolve pairs: matches stay face up, mismatches lock the board and revert
//     after RevertDelay.
//   - Track elapsed seconds with a ticker that starts on the first flip (or Start)
//     and is cancelled on win or Close.
//   - Transition not_started → in_progress → won.
//
// Notes:
//   - All timers come from a quartz.Clock so tests can drive time explicitly.
//   - Timer callbacks run on their own goroutines; g.mu serializes every
//     transition. Observers are called after g.mu is released but under
//     g.emitMu, taken before the release, so they see events in state order.
package game

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/robalobadob/pairs/internal/randutil"
)

const (
	// DefaultRevertDelay is how long a mismatched pair stays face up.
	DefaultRevertDelay = time.Second

	tickInterval = time.Second
)

var errTickerDone = errors.New("ticker done")

// Options configures New. Zero values select defaults.
type Options struct {
	ID          string        // defaults to a random UUID
	Mode        Mode          // defaults to ModeClassic
	Seed        uint64        // shuffle seed; 0 draws a random one
	Symbols     []Symbol      // catalog to choose faces from
	Cards       int           // board size, must be even
	Columns     int           // render hint; derived from Cards when 0
	RevertDelay time.Duration // defaults to DefaultRevertDelay
	Clock       quartz.Clock  // defaults to the real clock
	OnEvent     func(Event)   // optional observer; must not block or call back into the game
}

// Game holds the state of one game session.
type Game struct {
	ID        string
	Mode      Mode
	Seed      uint64
	CreatedAt time.Time

	mu          sync.Mutex
	emitMu      sync.Mutex // held while events are delivered, taken before mu is released
	clock       quartz.Clock
	onEvent     func(Event)
	revertDelay time.Duration

	board      Board
	columns    int
	phase      Phase
	pending    []int // face-up cards awaiting comparison, at most 2
	moves      int
	elapsed    int
	locked     bool
	closed     bool
	lastActive time.Time

	revert     *quartz.Timer
	stopTicker context.CancelFunc
}

// New generates a board and returns a game in PhaseNotStarted.
func New(opts Options) (*Game, error) {
	if opts.Seed == 0 {
		opts.Seed = randutil.NewSeed()
	}
	return NewWithRand(randutil.New(opts.Seed), opts)
}

// NewWithRand is New with an explicit random source; opts.Seed is recorded but
// not used for shuffling.
func NewWithRand(rng *rand.Rand, opts Options) (*Game, error) {
	board, err := NewBoard(rng, opts.Symbols, opts.Cards)
	if err != nil {
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Mode == "" {
		opts.Mode = ModeClassic
	}
	if opts.RevertDelay <= 0 {
		opts.RevertDelay = DefaultRevertDelay
	}
	cols := opts.Columns
	if cols <= 0 {
		cols = columnsFor(len(board))
	}

	now := opts.Clock.Now()
	return &Game{
		ID:          opts.ID,
		Mode:        opts.Mode,
		Seed:        opts.Seed,
		CreatedAt:   now,
		clock:       opts.Clock,
		onEvent:     opts.OnEvent,
		revertDelay: opts.RevertDelay,
		board:       board,
		columns:     cols,
		phase:       PhaseNotStarted,
		pending:     make([]int, 0, 2),
		lastActive:  now,
	}, nil
}

// Start moves a fresh game to PhaseInProgress and starts the elapsed-time
// ticker. It reports false if the game had already started.
func (g *Game) Start() bool {
	g.mu.Lock()
	started := !g.closed && g.startLocked()
	if !started {
		g.mu.Unlock()
		return false
	}
	g.unlockAndEmit(g.eventLocked(EventStarted))
	return true
}

// Flip requests that card i be turned face up.
// Illegal requests (matched or face-up card, pending revert, finished game)
// return OutcomeIgnored and leave the state untouched.
func (g *Game) Flip(i int) (Outcome, error) {
	g.mu.Lock()
	if i < 0 || i >= len(g.board) {
		g.mu.Unlock()
		return OutcomeIgnored, fmt.Errorf("%w: %d", ErrCardIndex, i)
	}
	outcome, events := g.flipLocked(i)
	g.unlockAndEmit(events...)
	return outcome, nil
}

func (g *Game) flipLocked(i int) (Outcome, []Event) {
	c := &g.board[i]
	if g.closed || g.phase == PhaseWon || g.locked || len(g.pending) >= 2 || c.Flipped || c.Matched {
		return OutcomeIgnored, nil
	}

	var events []Event
	if g.startLocked() {
		events = append(events, g.eventLocked(EventStarted))
	}

	g.lastActive = g.clock.Now()
	c.Flipped = true
	g.pending = append(g.pending, i)
	g.moves++
	events = append(events, g.eventLocked(EventFlipped, i))

	if len(g.pending) < 2 {
		return OutcomeFlipped, events
	}

	a, b := g.pending[0], g.pending[1]
	if g.board[a].Symbol == g.board[b].Symbol {
		g.board[a].Matched = true
		g.board[b].Matched = true
		g.pending = g.pending[:0]
		events = append(events, g.eventLocked(EventMatched, a, b))

		if g.allMatchedLocked() {
			g.phase = PhaseWon
			g.stopTickerLocked()
			events = append(events, g.eventLocked(EventWon))
			return OutcomeWon, events
		}
		return OutcomeMatched, events
	}

	g.locked = true
	g.revert = g.clock.AfterFunc(g.revertDelay, func() { g.revertPair(a, b) }, "game", "revert")
	events = append(events, g.eventLocked(EventMismatched, a, b))
	return OutcomeMismatched, events
}

// revertPair turns a mismatched pair back face down and unlocks the board.
func (g *Game) revertPair(a, b int) {
	g.mu.Lock()
	if g.closed || !g.locked {
		g.mu.Unlock()
		return
	}
	g.board[a].Flipped = false
	g.board[b].Flipped = false
	g.pending = g.pending[:0]
	g.locked = false
	g.revert = nil
	g.unlockAndEmit(g.eventLocked(EventReverted, a, b))
}

func (g *Game) startLocked() bool {
	if g.phase != PhaseNotStarted {
		return false
	}
	g.phase = PhaseInProgress
	g.lastActive = g.clock.Now()

	ctx, cancel := context.WithCancel(context.Background())
	g.stopTicker = cancel
	g.clock.TickerFunc(ctx, tickInterval, g.tick, "game", "tick")
	return true
}

func (g *Game) tick() error {
	g.mu.Lock()
	if g.closed || g.phase != PhaseInProgress {
		g.mu.Unlock()
		return errTickerDone
	}
	g.elapsed++
	g.unlockAndEmit(g.eventLocked(EventTick))
	return nil
}

func (g *Game) stopTickerLocked() {
	if g.stopTicker != nil {
		g.stopTicker()
		g.stopTicker = nil
	}
}

// Close cancels the ticker and any pending revert, then emits EventClosed.
// A closed game ignores further flips. Close is idempotent.
func (g *Game) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.stopTickerLocked()
	if g.revert != nil {
		g.revert.Stop()
		g.revert = nil
	}
	g.unlockAndEmit(g.eventLocked(EventClosed))
}

// View returns a snapshot with face-down symbols hidden.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

// Board returns a copy of the full board, symbols included.
func (g *Game) Board() Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(Board, len(g.board))
	copy(out, g.board)
	return out
}

// Columns is the layout width renderers should use.
func (g *Game) Columns() int { return g.columns }

// LastActive reports when the game last accepted a flip (or was created).
func (g *Game) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

func (g *Game) viewLocked() View {
	v := View{
		ID:         g.ID,
		Mode:       g.Mode,
		Phase:      g.phase,
		Cards:      make([]CardView, len(g.board)),
		Columns:    g.columns,
		Moves:      g.moves,
		Elapsed:    g.elapsed,
		Locked:     g.locked,
		PairsTotal: len(g.board) / 2,
	}
	for i, c := range g.board {
		cv := CardView{Index: i, Flipped: c.Flipped, Matched: c.Matched}
		if c.Flipped || c.Matched {
			cv.Symbol = c.Symbol
		}
		if c.Matched {
			v.PairsFound++
		}
		v.Cards[i] = cv
	}
	v.PairsFound /= 2
	return v
}

func (g *Game) eventLocked(kind EventKind, indices ...int) Event {
	return Event{Kind: kind, Indices: indices, View: g.viewLocked(), At: g.clock.Now()}
}

func (g *Game) allMatchedLocked() bool {
	for _, c := range g.board {
		if !c.Matched {
			return false
		}
	}
	return true
}

// unlockAndEmit releases g.mu and delivers events. It must be called with g.mu
// held; emitMu is taken first so a later transition cannot overtake them.
func (g *Game) unlockAndEmit(events ...Event) {
	if g.onEvent == nil || len(events) == 0 {
		g.mu.Unlock()
		return
	}
	g.emitMu.Lock()
	g.mu.Unlock()
	defer g.emitMu.Unlock()

	for _, ev := range events {
		g.onEvent(ev)
	}
}

// columnsFor picks the widest divisor of n not exceeding sqrt(n), so 16 cards
// lay out 4x4 and 8 cards 2x4.
func columnsFor(n int) int {
	best := 1
	for d := 1; d*d <= n; d++ {
		if n%d == 0 {
			best = d
		}
	}
	if best*best == n {
		return best
	}
	return n / best
}
