// Package tui is a terminal client for a local pairs game.
//
// The model owns one *game.Game at a time. Engine events (ticks, reverts) arrive
// on a channel and are turned into tea messages; key presses go through the same
// dispatcher the web client uses, so the rules live in one place.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/game"
)

const eventBuffer = 64

// Factory creates a game wired to the given observer.
type Factory func(onEvent func(game.Event)) (*game.Game, error)

// eventMsg carries an engine event into the update loop.
type eventMsg game.Event

// Model is the bubbletea model for one terminal session.
type Model struct {
	newGame Factory
	events  chan game.Event

	game *game.Game
	view game.View

	row, col int
	err      error
	quitting bool
}

// New creates a model and deals its first game.
func New(newGame Factory) (*Model, error) {
	m := &Model{newGame: newGame, events: make(chan game.Event, eventBuffer)}
	if err := m.deal(); err != nil {
		return nil, err
	}
	return m, nil
}

// Run starts a full-screen program and blocks until the player quits or ctx ends.
func Run(ctx context.Context, newGame Factory, opts ...tea.ProgramOption) error {
	m, err := New(newGame)
	if err != nil {
		return err
	}
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err = tea.NewProgram(m, opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close stops the current game's timers.
func (m *Model) Close() {
	if m.game != nil {
		m.game.Close()
	}
}

// deal replaces the current game with a fresh one.
func (m *Model) deal() error {
	g, err := m.newGame(m.publish)
	if err != nil {
		return err
	}
	m.Close()
	m.game = g
	m.view = g.View()
	m.row, m.col = 0, 0
	log.Debug().Str("gameId", g.ID).Int("cards", len(m.view.Cards)).Msg("terminal game dealt")
	return nil
}

// publish is the engine observer. It never blocks: the view is re-read on
// every message, so a dropped event only delays a redraw.
func (m *Model) publish(ev game.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func waitForEvent(ch <-chan game.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-ch)
	}
}

// Init starts listening for engine events.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update handles key presses and engine events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		// Late events from a game that was already replaced are dropped.
		if msg.View.ID == m.game.ID {
			m.view = m.game.View()
		}
		return m, waitForEvent(m.events)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.Close()
			return m, tea.Quit
		case "up", "k":
			m.move(-1, 0)
		case "down", "j":
			m.move(1, 0)
		case "left", "h":
			m.move(0, -1)
		case "right", "l":
			m.move(0, 1)
		case " ", "enter":
			m.click(fmt.Sprintf("cell:%d,%d", m.row, m.col))
		case "s":
			m.click("start")
		}
	}
	return m, nil
}

func (m *Model) rows() int {
	if m.view.Columns == 0 {
		return 0
	}
	return (len(m.view.Cards) + m.view.Columns - 1) / m.view.Columns
}

// move shifts the cursor, clamped to the board.
func (m *Model) move(dr, dc int) {
	m.row = min(max(m.row+dr, 0), m.rows()-1)
	m.col = min(max(m.col+dc, 0), m.view.Columns-1)
}

// click routes a raw target through the dispatcher.
func (m *Model) click(raw string) {
	m.err = nil
	t, err := game.ParseTarget(raw)
	if err != nil {
		m.err = err
		return
	}
	cmd, ok := game.Dispatch(t, m.game.View())
	if !ok {
		return
	}
	switch cmd.Kind {
	case game.CommandFlip:
		_, m.err = m.game.Flip(cmd.Index)
	case game.CommandStart:
		m.game.Start()
	case game.CommandRestart:
		m.err = m.deal()
	}
	m.view = m.game.View()
}

// View renders the board, the status line and help.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	title := "pairs"
	if m.view.Mode == game.ModeDaily {
		title = "pairs · daily"
	}
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n\n")

	for r := 0; r < m.rows(); r++ {
		cells := make([]string, 0, m.view.Columns)
		for c := 0; c < m.view.Columns; c++ {
			i := r*m.view.Columns + c
			if i >= len(m.view.Cards) {
				break
			}
			cells = append(cells, m.renderCard(m.view.Cards[i], r == m.row && c == m.col))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StatusStyle.Render(fmt.Sprintf("Moves: %d   Time: %s   Pairs: %d/%d",
		m.view.Moves, clock(m.view.Elapsed), m.view.PairsFound, m.view.PairsTotal)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	case m.view.Phase == game.PhaseWon:
		b.WriteString(WinStyle.Render(fmt.Sprintf("You won in %d moves and %s! Press s to play again.",
			m.view.Moves, clock(m.view.Elapsed))))
	case m.view.Phase == game.PhaseNotStarted:
		b.WriteString(HelpStyle.Render("Flip a card or press s to start."))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("←↑↓→/hjkl move · space flip · s start/restart · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderCard(c game.CardView, cursor bool) string {
	face := "?"
	style := FaceDownStyle
	switch {
	case c.Matched:
		face, style = string(c.Symbol), MatchedStyle
	case c.Flipped:
		face, style = string(c.Symbol), RevealedStyle
	}
	if cursor {
		style = CursorStyle
	}
	return style.Render(face)
}

// clock formats seconds as m:ss.
func clock(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
