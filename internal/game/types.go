// internal/game/types.go
//
// Core type definitions for the pairs game engine.
// Defines:
//   - Symbol, Card, Board: the laid-out deck for one game.
//   - Phase: coarse game state (not_started / in_progress / won).
//   - View: the renderer-facing snapshot of a game.
//   - Event: notifications emitted on state transitions.
//   - Sentinel errors shared by the engine, shuffler and dispatcher.

package game

import (
	"errors"
	"time"
)

var (
	// ErrConfiguration marks a board that cannot be generated (odd card count,
	// symbol catalog too small). Fatal to game generation.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput marks bad shuffler input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCardIndex is returned for flips outside the board.
	ErrCardIndex = errors.New("card index out of range")

	// ErrUnknownTarget is returned by ParseTarget for unrecognised click targets.
	ErrUnknownTarget = errors.New("unknown click target")
)

// Symbol is an opaque card face (an emoji or icon id).
type Symbol string

// Card is one position on the board.
type Card struct {
	ID      int    `json:"id"`
	Symbol  Symbol `json:"symbol"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// Board is the ordered card layout. Every symbol appears on exactly two cards.
type Board []Card

// Phase is the coarse lifecycle state of a game.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseWon        Phase = "won"
)

// Mode distinguishes freely shuffled games from date-seeded ones.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Outcome reports what a flip request did.
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeFlipped    Outcome = "flipped"
	OutcomeMatched    Outcome = "matched"
	OutcomeMismatched Outcome = "mismatched"
	OutcomeWon        Outcome = "won"
)

// CardView is a card as a renderer may see it. Symbol is empty while the card
// is face down.
type CardView struct {
	Index   int    `json:"index"`
	Symbol  Symbol `json:"symbol,omitempty"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// View is a consistent snapshot of a game for renderers.
type View struct {
	ID         string     `json:"id"`
	Mode       Mode       `json:"mode"`
	Phase      Phase      `json:"phase"`
	Cards      []CardView `json:"cards"`
	Columns    int        `json:"columns"`
	Moves      int        `json:"moves"`
	Elapsed    int        `json:"elapsedSeconds"`
	Locked     bool       `json:"locked"`
	PairsFound int        `json:"pairsFound"`
	PairsTotal int        `json:"pairsTotal"`
}

// EventKind names a state transition.
type EventKind string

const (
	EventStarted    EventKind = "started"
	EventFlipped    EventKind = "flipped"
	EventMatched    EventKind = "matched"
	EventMismatched EventKind = "mismatched"
	EventReverted   EventKind = "reverted"
	EventTick       EventKind = "tick"
	EventWon        EventKind = "won"
	EventClosed     EventKind = "closed" // last event; the game is gone
)

// Event is emitted to the game's observer after each transition.
type Event struct {
	Kind    EventKind `json:"type"`
	Indices []int     `json:"indices,omitempty"`
	View    View      `json:"view"`
	At      time.Time `json:"at"`
}
