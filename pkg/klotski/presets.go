package klotski

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// Puzzle is a named starting configuration.
type Puzzle struct {
	Name        string
	Description string
	Board       Board
	Pieces      []Piece
}

// State validates the puzzle and returns its starting state.
func (p Puzzle) State() (*State, error) {
	if err := errors.ValidatePuzzleName(p.Name); err != nil {
		return nil, err
	}
	s, err := NewState(p.Board, p.Pieces)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "puzzle %s", p.Name)
	}
	return s, nil
}

// Classic is the 4x5 "Huarong Road" layout with ten pieces: one 2x2 block,
// four 1x2 verticals, one 2x1 horizontal and four 1x1 squares.
func Classic() Puzzle {
	return Puzzle{
		Name:        "classic",
		Description: "Huarong Road, 4x5 board with 10 pieces",
		Board:       Board{Width: 4, Height: 5},
		Pieces: []Piece{
			{ID: 0, X: 1, Y: 0, Width: 2, Height: 2},
			{ID: 1, X: 0, Y: 0, Width: 1, Height: 2},
			{ID: 2, X: 3, Y: 0, Width: 1, Height: 2},
			{ID: 3, X: 0, Y: 2, Width: 1, Height: 2},
			{ID: 4, X: 3, Y: 2, Width: 1, Height: 2},
			{ID: 5, X: 1, Y: 2, Width: 2, Height: 1},
			{ID: 6, X: 0, Y: 4, Width: 1, Height: 1},
			{ID: 7, X: 1, Y: 3, Width: 1, Height: 1},
			{ID: 8, X: 2, Y: 3, Width: 1, Height: 1},
			{ID: 9, X: 3, Y: 4, Width: 1, Height: 1},
		},
	}
}

// Simple is a 3x3 layout with four pieces, small enough to enumerate by hand.
func Simple() Puzzle {
	return Puzzle{
		Name:        "simple",
		Description: "3x3 board with 4 pieces",
		Board:       Board{Width: 3, Height: 3},
		Pieces: []Piece{
			{ID: 0, X: 0, Y: 0, Width: 2, Height: 2},
			{ID: 1, X: 2, Y: 0, Width: 1, Height: 2},
			{ID: 2, X: 0, Y: 2, Width: 1, Height: 1},
			{ID: 3, X: 1, Y: 2, Width: 1, Height: 1},
		},
	}
}

// Presets returns the built-in puzzles in display order.
func Presets() []Puzzle {
	return []Puzzle{Classic(), Simple()}
}

// PresetNames returns the names accepted by PresetByName.
func PresetNames() []string {
	var names []string
	for _, p := range Presets() {
		names = append(names, p.Name)
	}
	return names
}

// PresetByName looks up a built-in puzzle, ignoring case.
func PresetByName(name string) (Puzzle, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets() {
		if p.Name == name {
			return p, nil
		}
	}
	return Puzzle{}, errors.New(errors.ErrCodeInvalidInput,
		"unknown puzzle %q (available: %s)", name, strings.Join(PresetNames(), ", "))
}

// Hash returns a stable digest of the board size and the id-sorted starting
// layout. It is used as a cache key.
func (p Puzzle) Hash() string {
	text := fmt.Sprintf("%dx%d:%s", p.Board.Width, p.Board.Height, canonicalText(p.Pieces, PolicyIdentity))
	return Fingerprint(md5.Sum([]byte(text))).String()
}
