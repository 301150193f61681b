package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pairs/internal/game"
)

var faces = []game.Symbol{"🐶", "🐱", "🦊", "🐸"}

func newTestModel(t *testing.T, clock quartz.Clock) *Model {
	t.Helper()
	m, err := New(func(onEvent func(game.Event)) (*game.Game, error) {
		return game.New(game.Options{Symbols: faces, Cards: 8, Clock: clock, OnEvent: onEvent})
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

// pairs returns, for each symbol, the two card indices holding it.
func pairs(m *Model) [][2]int {
	first := map[game.Symbol]int{}
	var out [][2]int
	for i, c := range m.game.Board() {
		if j, ok := first[c.Symbol]; ok {
			out = append(out, [2]int{j, i})
			continue
		}
		first[c.Symbol] = i
	}
	return out
}

func flipAt(m *Model, i int) {
	m.row, m.col = i/m.view.Columns, i%m.view.Columns
	press(m, " ")
}

func TestCursorStaysOnBoard(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))
	require.Equal(t, 4, m.view.Columns)

	press(m, "up", "left")
	assert.Equal(t, [2]int{0, 0}, [2]int{m.row, m.col})

	press(m, "right", "l", "l", "l", "l")
	assert.Equal(t, 3, m.col)

	press(m, "down", "j", "j")
	assert.Equal(t, 1, m.row)

	press(m, "k", "h")
	assert.Equal(t, [2]int{0, 2}, [2]int{m.row, m.col})
}

func TestSpaceFlipsCellUnderCursor(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))

	press(m, "right", "down", " ")
	assert.True(t, m.view.Cards[5].Flipped)
	assert.Equal(t, game.PhaseInProgress, m.view.Phase)
	assert.Equal(t, 1, m.view.Moves)

	// Same card again is ignored.
	press(m, "enter")
	assert.Equal(t, 1, m.view.Moves)
	assert.NoError(t, m.err)
}

func TestStartKey(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))
	press(m, "s")
	assert.Equal(t, game.PhaseInProgress, m.view.Phase)
	assert.Zero(t, m.view.Moves)

	// Disabled while the game runs.
	id := m.game.ID
	press(m, "s")
	assert.Equal(t, id, m.game.ID)
}

func TestEventsRefreshView(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock := quartz.NewMock(t)
	m := newTestModel(t, mClock)

	p := pairs(m)
	flipAt(m, p[0][0])
	flipAt(m, p[1][0])
	require.True(t, m.view.Locked)

	mClock.Advance(time.Second).MustWait(ctx)

	// Drain the events the engine emitted so far.
	for len(m.events) > 0 {
		msg := m.Init()()
		_, cmd := m.Update(msg)
		assert.NotNil(t, cmd)
	}
	assert.False(t, m.view.Locked)
	assert.False(t, m.view.Cards[p[0][0]].Flipped)
	assert.Equal(t, 1, m.view.Elapsed)
}

func TestWinAndRestart(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))
	first := m.game.ID

	for _, pr := range pairs(m) {
		flipAt(m, pr[0])
		flipAt(m, pr[1])
	}
	assert.Equal(t, game.PhaseWon, m.view.Phase)
	assert.Equal(t, 8, m.view.Moves)
	assert.Contains(t, m.View(), "You won in 8 moves")

	press(m, "s")
	assert.NotEqual(t, first, m.game.ID)
	assert.Equal(t, game.PhaseNotStarted, m.view.Phase)
	assert.Zero(t, m.view.Moves)
}

func TestStaleEventsIgnored(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))
	m.view.Moves = 42
	m.Update(eventMsg(game.Event{Kind: game.EventTick, View: game.View{ID: "someone-else"}}))
	assert.Equal(t, 42, m.view.Moves)
}

func TestViewHidesFaceDownCards(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))
	out := m.View()
	for _, f := range faces {
		assert.NotContains(t, out, string(f))
	}
	assert.Contains(t, out, "Moves: 0")
	assert.Contains(t, out, "press s to start")

	flipAt(m, 0)
	assert.Contains(t, m.View(), string(m.game.Board()[0].Symbol))
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, quartz.NewMock(t))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00", clock(0))
	assert.Equal(t, "1:05", clock(65))
	assert.Equal(t, "12:00", clock(720))
}
