package klotski

import (
	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// Cell is a single grid square, addressed by column X and row Y.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Piece is a rectangular block with its top-left corner at (X, Y).
// Pieces are values; moving one yields a new Piece.
type Piece struct {
	ID     int
	X, Y   int
	Width  int
	Height int
}

// NewPiece validates and returns a piece. It fails with INVALID_PIECE when
// the id is negative or either dimension is not positive.
func NewPiece(id, x, y, width, height int) (Piece, error) {
	if err := errors.ValidatePieceGeometry(id, width, height); err != nil {
		return Piece{}, err
	}
	return Piece{ID: id, X: x, Y: y, Width: width, Height: height}, nil
}

// Cells returns every grid cell the piece covers.
func (p Piece) Cells() []Cell {
	cells := make([]Cell, 0, p.Width*p.Height)
	for dx := 0; dx < p.Width; dx++ {
		for dy := 0; dy < p.Height; dy++ {
			cells = append(cells, Cell{X: p.X + dx, Y: p.Y + dy})
		}
	}
	return cells
}

// Occupies reports whether c lies inside the piece.
func (p Piece) Occupies(c Cell) bool {
	return c.X >= p.X && c.X < p.X+p.Width && c.Y >= p.Y && c.Y < p.Y+p.Height
}

// At returns a copy of p with its corner at (x, y).
func (p Piece) At(x, y int) Piece {
	p.X, p.Y = x, y
	return p
}

// Moved returns a copy of p translated one cell in direction d.
func (p Piece) Moved(d Direction) Piece {
	dx, dy := d.Delta()
	return p.At(p.X+dx, p.Y+dy)
}

// Position returns the top-left corner of the piece.
func (p Piece) Position() Cell {
	return Cell{X: p.X, Y: p.Y}
}

// Board is the fixed playing area shared by every state of one graph.
type Board struct {
	Width  int
	Height int
}

// NewBoard validates board dimensions.
func NewBoard(width, height int) (Board, error) {
	if err := errors.ValidateBoard(width, height); err != nil {
		return Board{}, err
	}
	return Board{Width: width, Height: height}, nil
}

// Contains reports whether a w×h rectangle at (x, y) lies fully on the board.
func (b Board) Contains(x, y, w, h int) bool {
	return x >= 0 && y >= 0 && x+w <= b.Width && y+h <= b.Height
}

// Cells returns the number of grid cells on the board.
func (b Board) Cells() int {
	return b.Width * b.Height
}
