package klotski

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// emptyCell marks an unoccupied square in an occupancy grid.
const emptyCell = -1

// State is one configuration of every piece on the board.
// The piece order is significant: it fixes the order of generated moves.
type State struct {
	board  Board
	pieces []Piece
}

// NewState validates a configuration. Piece ids must be unique, every piece
// must lie on the board, and no two pieces may overlap (COLLISION_INVARIANT).
func NewState(board Board, pieces []Piece) (*State, error) {
	if err := errors.ValidateBoard(board.Width, board.Height); err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(pieces))
	for _, p := range pieces {
		if err := errors.ValidatePieceGeometry(p.ID, p.Width, p.Height); err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, errors.New(errors.ErrCodeInvalidPuzzle, "duplicate piece id %d", p.ID)
		}
		seen[p.ID] = true
		if !board.Contains(p.X, p.Y, p.Width, p.Height) {
			return nil, errors.New(errors.ErrCodeInvalidPuzzle,
				"piece %d at (%d,%d) size %dx%d is outside the %dx%d board",
				p.ID, p.X, p.Y, p.Width, p.Height, board.Width, board.Height)
		}
	}
	s := &State{board: board, pieces: slices.Clone(pieces)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Board returns the board the state lives on.
func (s *State) Board() Board { return s.board }

// Pieces returns a copy of the pieces in their original order.
func (s *State) Pieces() []Piece { return slices.Clone(s.pieces) }

// Len returns the number of pieces.
func (s *State) Len() int { return len(s.pieces) }

// Piece returns the piece with the given id.
func (s *State) Piece(id int) (Piece, bool) {
	for _, p := range s.pieces {
		if p.ID == id {
			return p, true
		}
	}
	return Piece{}, false
}

// Fingerprint returns the geometry fingerprint of the state.
func (s *State) Fingerprint() Fingerprint {
	return fingerprintOf(s.pieces, PolicyGeometry)
}

// FingerprintWith returns the fingerprint under the given identity policy.
func (s *State) FingerprintWith(policy Policy) Fingerprint {
	return fingerprintOf(s.pieces, policy)
}

// CanonicalText returns the text the fingerprint is computed over.
func (s *State) CanonicalText(policy Policy) string {
	return string(canonicalText(s.pieces, policy))
}

// OccupiedMap maps every covered cell to the id of the piece covering it.
func (s *State) OccupiedMap() map[Cell]int {
	m := make(map[Cell]int, s.board.Cells())
	for _, p := range s.pieces {
		for _, c := range p.Cells() {
			m[c] = p.ID
		}
	}
	return m
}

// IsPlacementLegal reports whether the piece with pieceID could sit as a w×h
// rectangle at (x, y): it must lie on the board and may only overlap cells
// currently covered by itself.
func (s *State) IsPlacementLegal(pieceID, x, y, w, h int) bool {
	if !s.board.Contains(x, y, w, h) {
		return false
	}
	return s.occupancy().free(pieceID, x, y, w, h)
}

// Validate checks the no-overlap and in-bounds invariants.
func (s *State) Validate() error {
	grid := make([]int, s.board.Cells())
	for i := range grid {
		grid[i] = emptyCell
	}
	for _, p := range s.pieces {
		if !s.board.Contains(p.X, p.Y, p.Width, p.Height) {
			return errors.New(errors.ErrCodeCollision, "piece %d at (%d,%d) leaves the board", p.ID, p.X, p.Y)
		}
		for _, c := range p.Cells() {
			i := c.Y*s.board.Width + c.X
			if grid[i] != emptyCell {
				return errors.New(errors.ErrCodeCollision, "pieces %d and %d overlap at (%d,%d)", grid[i], p.ID, c.X, c.Y)
			}
			grid[i] = p.ID
		}
	}
	return nil
}

// Positions returns the (x, y) corner of every piece ordered by piece id.
func (s *State) Positions() []Cell {
	sorted := slices.Clone(s.pieces)
	slices.SortFunc(sorted, func(a, b Piece) int { return cmp.Compare(a.ID, b.ID) })
	out := make([]Cell, len(sorted))
	for i, p := range sorted {
		out[i] = p.Position()
	}
	return out
}

// Definitions returns (id, width, height) of every piece ordered by id.
func (s *State) Definitions() []PieceDef {
	defs := make([]PieceDef, len(s.pieces))
	for i, p := range s.pieces {
		defs[i] = PieceDef{ID: p.ID, Width: p.Width, Height: p.Height}
	}
	slices.SortFunc(defs, func(a, b PieceDef) int { return cmp.Compare(a.ID, b.ID) })
	return defs
}

// Apply moves the piece with the given id one step. It returns false when
// the move is not legal from s.
func (s *State) Apply(pieceID int, d Direction) (*State, bool) {
	for i, p := range s.pieces {
		if p.ID != pieceID {
			continue
		}
		next := p.Moved(d)
		if !s.IsPlacementLegal(p.ID, next.X, next.Y, next.Width, next.Height) {
			return nil, false
		}
		return s.replace(i, next), true
	}
	return nil, false
}

// String draws the board, one row per line. Pieces are labelled 0-9 and
// then A, B, ...; empty cells are dots.
func (s *State) String() string {
	rows := make([][]byte, s.board.Height)
	for y := range rows {
		rows[y] = []byte(strings.Repeat(".", s.board.Width))
	}
	for _, p := range s.pieces {
		sym := pieceSymbol(p.ID)
		for _, c := range p.Cells() {
			rows[c.Y][c.X] = sym
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

func pieceSymbol(id int) byte {
	switch {
	case id < 10:
		return byte('0' + id)
	case id < 36:
		return byte('A' + id - 10)
	}
	return '#'
}

// replace returns a new state with pieces[i] swapped for p.
func (s *State) replace(i int, p Piece) *State {
	pieces := slices.Clone(s.pieces)
	pieces[i] = p
	return &State{board: s.board, pieces: pieces}
}

// occupancy is a flat board-sized grid of piece ids, emptyCell where free.
type occupancy struct {
	width int
	cells []int
}

func (s *State) occupancy() occupancy {
	o := occupancy{width: s.board.Width, cells: make([]int, s.board.Cells())}
	for i := range o.cells {
		o.cells[i] = emptyCell
	}
	for _, p := range s.pieces {
		for dy := 0; dy < p.Height; dy++ {
			row := (p.Y + dy) * o.width
			for dx := 0; dx < p.Width; dx++ {
				o.cells[row+p.X+dx] = p.ID
			}
		}
	}
	return o
}

// free reports whether every cell of the rectangle is empty or covered by
// pieceID. The rectangle must already be known to be on the board.
func (o occupancy) free(pieceID, x, y, w, h int) bool {
	for dy := 0; dy < h; dy++ {
		row := (y + dy) * o.width
		for dx := 0; dx < w; dx++ {
			if id := o.cells[row+x+dx]; id != emptyCell && id != pieceID {
				return false
			}
		}
	}
	return true
}
