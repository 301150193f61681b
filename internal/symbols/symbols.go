// internal/symbols/symbols.go
//
// Card face catalog.
//
// Responsibilities:
//   - Load the catalog from a file (SYMBOLS_FILE / --symbols-file) or fall back to
//     the embedded default of ten emoji.
//   - Normalize entries: trim, drop blanks and "#" comments, collapse duplicates.
//
// The catalog is larger than a board needs; the shuffler picks which entries a
// given game uses.
package symbols

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robalobadob/pairs/internal/game"
)

//go:embed default_symbols.txt
var embeddedSymbols string

// ErrEmpty is returned when a catalog source yields no symbols.
var ErrEmpty = errors.New("symbols: catalog is empty")

// Catalog is an ordered, duplicate-free list of card faces.
type Catalog struct {
	list []game.Symbol
}

// Default returns the embedded catalog.
func Default() *Catalog {
	return &Catalog{list: normalizeLines(strings.Split(embeddedSymbols, "\n"))}
}

// Load reads a catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("symbols: read %s: %w", path, err)
	}
	c := &Catalog{list: normalizeLines(lines)}
	if len(c.list) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// All returns a copy of the catalog.
func (c *Catalog) All() []game.Symbol {
	out := make([]game.Symbol, len(c.list))
	copy(out, c.list)
	return out
}

// Count returns the number of distinct symbols.
func (c *Catalog) Count() int { return len(c.list) }

// Fits reports whether a board of the given card count fits the catalog.
func (c *Catalog) Fits(cards int) bool { return cards/2 <= len(c.list) }

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalizeLines trims each line, skips blanks and comments and keeps the first
// occurrence of every symbol.
func normalizeLines(lines []string) []game.Symbol {
	seen := make(map[string]struct{}, len(lines))
	var out []game.Symbol
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, game.Symbol(s))
	}
	return out
}
