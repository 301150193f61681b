package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pairs/internal/randutil"
)

var catalog = []Symbol{"🥔", "🍒", "🥑", "🌽", "🥕", "🍇", "🍉", "🍌", "🥭", "🍍"}

func countFaces(faces []Symbol) map[Symbol]int {
	counts := make(map[Symbol]int)
	for _, s := range faces {
		counts[s]++
	}
	return counts
}

func TestShuffleProducesPairs(t *testing.T) {
	rng := randutil.New(7)
	for k := 1; k <= len(catalog); k++ {
		faces, err := Shuffle(rng, catalog, k)
		require.NoError(t, err)
		require.Len(t, faces, 2*k)

		counts := countFaces(faces)
		assert.Len(t, counts, k, "k=%d", k)
		for s, n := range counts {
			assert.Equal(t, 2, n, "symbol %s appears %d times", s, n)
			assert.Contains(t, catalog, s)
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	in := append([]Symbol(nil), catalog...)
	_, err := Shuffle(randutil.New(1), in, 8)
	require.NoError(t, err)
	assert.Equal(t, catalog, in)
}

func TestShuffleCollapsesDuplicates(t *testing.T) {
	faces, err := Shuffle(randutil.New(3), []Symbol{"a", "a", "b"}, 2)
	require.NoError(t, err)
	assert.Equal(t, map[Symbol]int{"a": 2, "b": 2}, countFaces(faces))

	_, err = Shuffle(randutil.New(3), []Symbol{"a", "a", "b"}, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestShuffleRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		symbols []Symbol
		pairs   int
	}{
		{"nil symbols", nil, 1},
		{"empty symbols", []Symbol{}, 1},
		{"zero pairs", catalog, 0},
		{"negative pairs", catalog, -2},
		{"too many pairs", catalog, len(catalog) + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Shuffle(randutil.New(1), tt.symbols, tt.pairs)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := Shuffle(nil, catalog, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestShuffleSameSeedSameLayout(t *testing.T) {
	a, err := Shuffle(randutil.New(99), catalog, 8)
	require.NoError(t, err)
	b, err := Shuffle(randutil.New(99), catalog, 8)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// Every symbol should land in every slot about equally often.
func TestShufflePositionsAreUniform(t *testing.T) {
	const trials = 20000
	symbols := []Symbol{"a", "b", "c", "d"}
	slots := 2 * len(symbols)

	hits := make(map[Symbol][]int)
	for _, s := range symbols {
		hits[s] = make([]int, slots)
	}

	rng := randutil.New(2024)
	for i := 0; i < trials; i++ {
		faces, err := Shuffle(rng, symbols, len(symbols))
		require.NoError(t, err)
		for pos, s := range faces {
			hits[s][pos]++
		}
	}

	// Each symbol fills 2 of 8 slots, so expected frequency per slot is 1/4.
	expected := float64(trials) * 2 / float64(slots)
	tolerance := 0.05 * expected
	for s, perSlot := range hits {
		for pos, n := range perSlot {
			assert.InDelta(t, expected, float64(n), tolerance, "symbol %s at position %d", s, pos)
		}
	}
}

// The K-of-N sub-selection is random, so every catalog entry gets used.
func TestShuffleSubSelectionIsUniform(t *testing.T) {
	const trials = 10000
	chosen := make(map[Symbol]int)
	rng := randutil.New(11)
	for i := 0; i < trials; i++ {
		faces, err := Shuffle(rng, catalog, 8)
		require.NoError(t, err)
		for s := range countFaces(faces) {
			chosen[s]++
		}
	}

	expected := float64(trials) * 8 / float64(len(catalog))
	for _, s := range catalog {
		assert.InDelta(t, expected, float64(chosen[s]), 0.05*expected, "symbol %s", s)
	}
}

func TestNewBoard(t *testing.T) {
	b, err := NewBoard(randutil.New(5), catalog, 16)
	require.NoError(t, err)
	require.Len(t, b, 16)
	for i, c := range b {
		assert.Equal(t, i, c.ID)
		assert.False(t, c.Flipped)
		assert.False(t, c.Matched)
	}
}

func TestNewBoardRejectsOddOrTinyBoards(t *testing.T) {
	for _, n := range []int{-2, 0, 1, 3, 15} {
		_, err := NewBoard(randutil.New(5), catalog, n)
		assert.ErrorIs(t, err, ErrConfiguration, "cards=%d", n)
	}
}

func TestNewBoardCatalogTooSmall(t *testing.T) {
	_, err := NewBoard(randutil.New(5), catalog[:3], 8)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
