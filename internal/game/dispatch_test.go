package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want Target
	}{
		{"start", Target{Kind: TargetStart}},
		{" start ", Target{Kind: TargetStart}},
		{"card:0", Target{Kind: TargetCard, Index: 0}},
		{"card:15", Target{Kind: TargetCard, Index: 15}},
		{"cell:1,2", Target{Kind: TargetCell, Row: 1, Col: 2}},
		{"cell: 3 , 0", Target{Kind: TargetCell, Row: 3, Col: 0}},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, raw := range []string{"", "card", "card:x", "cell:1", "cell:a,b", "board:1", "restart"} {
		_, err := ParseTarget(raw)
		assert.ErrorIs(t, err, ErrUnknownTarget, raw)
	}
}

func viewWith(phase Phase, cols int, cards ...CardView) View {
	for i := range cards {
		cards[i].Index = i
	}
	return View{Phase: phase, Columns: cols, Cards: cards}
}

func TestDispatchCards(t *testing.T) {
	v := viewWith(PhaseInProgress, 2,
		CardView{},
		CardView{Flipped: true, Symbol: "a"},
		CardView{Flipped: true, Matched: true, Symbol: "b"},
		CardView{},
	)

	cmd, ok := Dispatch(Target{Kind: TargetCard, Index: 0}, v)
	assert.True(t, ok)
	assert.Equal(t, Command{Kind: CommandFlip, Index: 0}, cmd)

	for _, i := range []int{1, 2, -1, 4} {
		_, ok = Dispatch(Target{Kind: TargetCard, Index: i}, v)
		assert.False(t, ok, "card %d", i)
	}

	cmd, ok = Dispatch(Target{Kind: TargetCell, Row: 1, Col: 1}, v)
	assert.True(t, ok)
	assert.Equal(t, Command{Kind: CommandFlip, Index: 3}, cmd)

	for _, cell := range [][2]int{{0, 2}, {2, 0}, {-1, 0}, {0, 1}} {
		_, ok = Dispatch(Target{Kind: TargetCell, Row: cell[0], Col: cell[1]}, v)
		assert.False(t, ok, "cell %v", cell)
	}
}

func TestDispatchDropsCardsWhileLockedOrWon(t *testing.T) {
	v := viewWith(PhaseInProgress, 2, CardView{}, CardView{})
	v.Locked = true
	_, ok := Dispatch(Target{Kind: TargetCard, Index: 0}, v)
	assert.False(t, ok)

	v = viewWith(PhaseWon, 2, CardView{}, CardView{})
	_, ok = Dispatch(Target{Kind: TargetCard, Index: 0}, v)
	assert.False(t, ok)
}

func TestDispatchStartControl(t *testing.T) {
	cmd, ok := Dispatch(Target{Kind: TargetStart}, viewWith(PhaseNotStarted, 1))
	assert.True(t, ok)
	assert.Equal(t, CommandStart, cmd.Kind)

	_, ok = Dispatch(Target{Kind: TargetStart}, viewWith(PhaseInProgress, 1))
	assert.False(t, ok, "start control is disabled while a game runs")

	cmd, ok = Dispatch(Target{Kind: TargetStart}, viewWith(PhaseWon, 1))
	assert.True(t, ok)
	assert.Equal(t, CommandRestart, cmd.Kind)
	assert.Equal(t, "restart", cmd.Kind.String())
}

func TestDispatchUnknownKind(t *testing.T) {
	_, ok := Dispatch(Target{}, viewWith(PhaseInProgress, 1, CardView{}))
	assert.False(t, ok)
}
