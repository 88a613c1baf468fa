package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// =============================================================================
// Layout - External 3D Position Table
// =============================================================================

// Position is one entry of an externally computed 3D layout. The table is
// produced by a separate layout tool and keyed by node fingerprint:
//
//	[{"id": "553eef4f...", "x": 1.5, "y": -2.25, "z": 0}, ...]
type Position struct {
	ID string  `json:"id" bson:"id"`
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
	Z  float64 `json:"z" bson:"z"`
}

// Layout maps node fingerprints to their (x, y, z) coordinates.
// A node missing from the layout is packed at the origin.
type Layout map[string][3]float64

// NewLayout builds a lookup table from position entries. When an id
// repeats the last entry wins.
func NewLayout(entries []Position) Layout {
	l := make(Layout, len(entries))
	for _, p := range entries {
		l[p.ID] = [3]float64{p.X, p.Y, p.Z}
	}
	return l
}

// Entries returns the layout as position entries sorted by id.
func (l Layout) Entries() []Position {
	out := make([]Position, 0, len(l))
	for id, xyz := range l {
		out = append(out, Position{ID: id, X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	slices.SortFunc(out, func(a, b Position) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Missing counts the nodes of g that have no entry in the layout.
func (l Layout) Missing(g Graph) int {
	n := 0
	for _, node := range g.Nodes {
		if _, ok := l[node.ID]; !ok {
			n++
		}
	}
	return n
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l.Entries(), "", "  ")
}

// ReadLayout decodes a JSON position array.
func ReadLayout(r io.Reader) (Layout, error) {
	var entries []Position
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode positions")
	}
	return NewLayout(entries), nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}
