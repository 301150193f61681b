package game

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetKind identifies what a click landed on.
type TargetKind int

const (
	TargetCard  TargetKind = iota + 1 // a card addressed by board index
	TargetCell                        // a card addressed by row and column
	TargetStart                       // the start / restart control
)

// Target is a raw click target as delivered by a renderer.
type Target struct {
	Kind     TargetKind
	Index    int
	Row, Col int
}

// ParseTarget decodes "card:<i>", "cell:<row>,<col>" or "start".
func ParseTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "start" {
		return Target{Kind: TargetStart}, nil
	}

	kind, arg, ok := strings.Cut(raw, ":")
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, raw)
	}
	switch kind {
	case "card":
		i, err := strconv.Atoi(arg)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, raw)
		}
		return Target{Kind: TargetCard, Index: i}, nil
	case "cell":
		r, c, ok := strings.Cut(arg, ",")
		if !ok {
			return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, raw)
		}
		row, err1 := strconv.Atoi(strings.TrimSpace(r))
		col, err2 := strconv.Atoi(strings.TrimSpace(c))
		if err1 != nil || err2 != nil {
			return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, raw)
		}
		return Target{Kind: TargetCell, Row: row, Col: col}, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, raw)
}

// CommandKind is what the state machine should do with a click.
type CommandKind int

const (
	CommandFlip CommandKind = iota + 1
	CommandStart
	CommandRestart
)

func (k CommandKind) String() string {
	switch k {
	case CommandFlip:
		return "flip"
	case CommandStart:
		return "start"
	case CommandRestart:
		return "restart"
	}
	return "unknown"
}

// Command is a dispatched click.
type Command struct {
	Kind  CommandKind
	Index int
}

// Dispatch translates a click into a command against the current view.
// ok is false when the click should be dropped: face-up or matched cards,
// cards outside the board, any card while a pair is reverting or after the
// win, and the start control while a game is running.
func Dispatch(t Target, v View) (Command, bool) {
	switch t.Kind {
	case TargetStart:
		switch v.Phase {
		case PhaseNotStarted:
			return Command{Kind: CommandStart}, true
		case PhaseWon:
			return Command{Kind: CommandRestart}, true
		}
		return Command{}, false

	case TargetCell:
		if v.Columns <= 0 || t.Row < 0 || t.Col < 0 || t.Col >= v.Columns {
			return Command{}, false
		}
		t = Target{Kind: TargetCard, Index: t.Row*v.Columns + t.Col}
		fallthrough

	case TargetCard:
		if t.Index < 0 || t.Index >= len(v.Cards) {
			return Command{}, false
		}
		if v.Phase == PhaseWon || v.Locked {
			return Command{}, false
		}
		c := v.Cards[t.Index]
		if c.Flipped || c.Matched {
			return Command{}, false
		}
		return Command{Kind: CommandFlip, Index: t.Index}, true
	}
	return Command{}, false
}
