package game

import (
	"fmt"
	rand "math/rand/v2"
)

// Shuffle picks pairs distinct symbols at random from symbols, duplicates them
// and returns the 2*pairs faces in uniformly random order.
//
// Both the sub-selection and the final order use Fisher-Yates (rand.Shuffle).
// Duplicate entries in symbols are collapsed before choosing.
func Shuffle(rng *rand.Rand, symbols []Symbol, pairs int) ([]Symbol, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: empty symbol set", ErrInvalidInput)
	}
	if pairs <= 0 {
		return nil, fmt.Errorf("%w: pair count must be positive, got %d", ErrInvalidInput, pairs)
	}

	distinct := dedupe(symbols)
	if pairs > len(distinct) {
		return nil, fmt.Errorf("%w: %d pairs requested but only %d distinct symbols",
			ErrInvalidInput, pairs, len(distinct))
	}

	rng.Shuffle(len(distinct), func(i, j int) { distinct[i], distinct[j] = distinct[j], distinct[i] })
	chosen := distinct[:pairs]

	out := make([]Symbol, 0, 2*pairs)
	out = append(out, chosen...)
	out = append(out, chosen...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func dedupe(symbols []Symbol) []Symbol {
	seen := make(map[Symbol]struct{}, len(symbols))
	out := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NewBoard lays out cards for a game of the given size.
// cards must be even and at least 2.
func NewBoard(rng *rand.Rand, symbols []Symbol, cards int) (Board, error) {
	if cards < 2 || cards%2 != 0 {
		return nil, fmt.Errorf("%w: board must hold an even number of cards, got %d", ErrConfiguration, cards)
	}
	faces, err := Shuffle(rng, symbols, cards/2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	b := make(Board, len(faces))
	for i, s := range faces {
		b[i] = Card{ID: i, Symbol: s}
	}
	return b, nil
}
