package klotski

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

func TestNewPiece(t *testing.T) {
	tests := []struct {
		name     string
		id, w, h int
		wantErr  bool
	}{
		{"unit square", 0, 1, 1, false},
		{"big block", 7, 2, 2, false},
		{"zero width", 1, 0, 1, true},
		{"negative height", 1, 1, -2, true},
		{"negative id", -1, 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPiece(tt.id, 0, 0, tt.w, tt.h)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidPiece), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, p.ID)
		})
	}
}

func TestPieceCells(t *testing.T) {
	p := Piece{ID: 0, X: 1, Y: 2, Width: 2, Height: 2}

	cells := p.Cells()
	assert.Equal(t, []Cell{{1, 2}, {1, 3}, {2, 2}, {2, 3}}, cells)
	for _, c := range cells {
		assert.True(t, p.Occupies(c), "piece should occupy %v", c)
	}
	assert.False(t, p.Occupies(Cell{0, 2}))
	assert.False(t, p.Occupies(Cell{3, 3}))
	assert.False(t, p.Occupies(Cell{1, 4}))
}

func TestPieceMoved(t *testing.T) {
	p := Piece{ID: 3, X: 1, Y: 1, Width: 1, Height: 2}

	tests := []struct {
		dir  Direction
		x, y int
	}{
		{Up, 1, 0},
		{Down, 1, 2},
		{Left, 0, 1},
		{Right, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got := p.Moved(tt.dir)
			assert.Equal(t, Cell{tt.x, tt.y}, got.Position())
			assert.Equal(t, p.Width, got.Width)
			assert.Equal(t, p.Height, got.Height)
			assert.Equal(t, p.Position(), got.Moved(tt.dir.Opposite()).Position())
		})
	}
	assert.Equal(t, Cell{1, 1}, p.Position(), "Moved must not mutate the receiver")
}

func TestNewBoard(t *testing.T) {
	_, err := NewBoard(4, 5)
	require.NoError(t, err)

	for _, dims := range [][2]int{{0, 5}, {4, 0}, {-1, 3}, {256, 1}} {
		_, err := NewBoard(dims[0], dims[1])
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidBoard), "NewBoard(%d, %d) = %v", dims[0], dims[1], err)
	}
}

func TestBoardContains(t *testing.T) {
	b := Board{Width: 4, Height: 5}

	assert.True(t, b.Contains(0, 0, 4, 5))
	assert.True(t, b.Contains(3, 4, 1, 1))
	assert.True(t, b.Contains(2, 3, 2, 2))
	assert.False(t, b.Contains(-1, 0, 1, 1))
	assert.False(t, b.Contains(0, -1, 1, 1))
	assert.False(t, b.Contains(3, 0, 2, 1))
	assert.False(t, b.Contains(0, 4, 1, 2))
	assert.Equal(t, 20, b.Cells())
}

func TestDirectionCodes(t *testing.T) {
	assert.Equal(t, Direction(0), Up)
	assert.Equal(t, Direction(1), Down)
	assert.Equal(t, Direction(2), Left)
	assert.Equal(t, Direction(3), Right)

	for _, d := range []Direction{Up, Down, Left, Right} {
		got, err := DirectionFromCode(uint8(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)

		parsed, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	_, err := DirectionFromCode(4)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = ParseDirection("diagonal")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestDirectionText(t *testing.T) {
	text, err := Right.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "right", string(text))

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("up")))
	assert.Equal(t, Up, d)

	_, err = Direction(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Direction(9)", Direction(9).String())
}
