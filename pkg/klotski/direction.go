package klotski

import (
	"fmt"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// Direction is a unit translation. Its numeric value is the wire code used
// by the packed format: up=0, down=1, left=2, right=3.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// moveOrder is the order in which directions are tried for each piece.
// It fixes edge order in the output graph and must not change.
var moveOrder = [...]Direction{Left, Right, Up, Down}

var directionNames = [...]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

// Delta returns the (dx, dy) offset of one step in direction d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Valid reports whether d is one of the four defined directions.
func (d Direction) Valid() bool {
	return d <= Right
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// ParseDirection converts a direction name ("up", "down", "left", "right").
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return Direction(d), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown direction %q", s)
}

// DirectionFromCode converts a packed-format direction code.
func DirectionFromCode(code uint8) (Direction, error) {
	d := Direction(code)
	if !d.Valid() {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "unknown direction code %d", code)
	}
	return d, nil
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid direction %d", uint8(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
