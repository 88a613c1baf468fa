package klotski

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// puzzleFile is the on-disk TOML shape of a custom puzzle:
//
//	name = "custom"
//	width = 4
//	height = 5
//
//	[[pieces]]
//	id = 0
//	x = 1
//	y = 0
//	w = 2
//	h = 2
type puzzleFile struct {
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Width       int         `toml:"width"`
	Height      int         `toml:"height"`
	Pieces      []pieceSpec `toml:"pieces"`
}

type pieceSpec struct {
	ID int `toml:"id"`
	X  int `toml:"x"`
	Y  int `toml:"y"`
	W  int `toml:"w"`
	H  int `toml:"h"`
}

// LoadPuzzleFile reads a TOML puzzle definition from path.
func LoadPuzzleFile(path string) (Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Puzzle{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read puzzle file %s", path)
	}
	return ParsePuzzle(data)
}

// ParsePuzzle decodes a TOML puzzle definition and validates its layout.
// Unknown keys are rejected.
func ParsePuzzle(data []byte) (Puzzle, error) {
	var f puzzleFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return Puzzle{}, errors.Wrap(errors.ErrCodeInvalidPuzzle, err, "parse puzzle")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Puzzle{}, errors.New(errors.ErrCodeInvalidPuzzle, "unknown key %q", undecoded[0].String())
	}
	if len(f.Pieces) == 0 {
		return Puzzle{}, errors.New(errors.ErrCodeInvalidPuzzle, "puzzle %q has no pieces", f.Name)
	}

	p := Puzzle{
		Name:        f.Name,
		Description: f.Description,
		Board:       Board{Width: f.Width, Height: f.Height},
		Pieces:      make([]Piece, len(f.Pieces)),
	}
	for i, ps := range f.Pieces {
		p.Pieces[i] = Piece{ID: ps.ID, X: ps.X, Y: ps.Y, Width: ps.W, Height: ps.H}
	}
	if _, err := p.State(); err != nil {
		return Puzzle{}, err
	}
	return p, nil
}
