package packed

import (
	"encoding/binary"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

// Graph is a decoded packed graph. Piece ids are their index in Pieces.
type Graph struct {
	Header Header
	Pieces []klotski.PieceDef
	Nodes  []Node
	Edges  []Edge
}

// Node is one decoded state.
type Node struct {
	ID        klotski.Fingerprint
	Positions []klotski.Cell
	XYZ       [3]int16
}

// Edge is one decoded move. Source and Target index Graph.Nodes.
type Edge struct {
	Source    uint32
	Target    uint32
	PieceID   uint8
	Direction klotski.Direction
}

// Position returns the dequantized layout coordinates of node i.
func (g *Graph) Position(i int) [3]float64 {
	scale := g.Header.Scale()
	xyz := g.Nodes[i].XYZ
	return [3]float64{
		Dequantize(xyz[0], scale),
		Dequantize(xyz[1], scale),
		Dequantize(xyz[2], scale),
	}
}

// ToGraph converts the decoded graph back to the interchange format.
func (g *Graph) ToGraph() graph.Graph {
	out := graph.Graph{
		Metadata: graph.Metadata{
			TotalNodes:  len(g.Nodes),
			TotalEdges:  len(g.Edges),
			BoardWidth:  int(g.Header.BoardWidth),
			BoardHeight: int(g.Header.BoardHeight),
		},
		Pieces: make([]graph.Piece, len(g.Pieces)),
		Nodes:  make([]graph.Node, len(g.Nodes)),
		Edges:  make([]graph.Edge, len(g.Edges)),
	}
	for i, p := range g.Pieces {
		out.Pieces[i] = graph.Piece{ID: p.ID, Width: p.Width, Height: p.Height}
	}
	for i, n := range g.Nodes {
		pos := make([][2]int, len(n.Positions))
		for k, c := range n.Positions {
			pos[k] = [2]int{c.X, c.Y}
		}
		out.Nodes[i] = graph.Node{ID: n.ID.String(), Positions: pos}
	}
	for i, e := range g.Edges {
		out.Edges[i] = graph.Edge{
			Source:    out.Nodes[e.Source].ID,
			Target:    out.Nodes[e.Target].ID,
			PieceID:   int(e.PieceID),
			Direction: e.Direction.String(),
		}
	}
	return out
}

// Layout returns the dequantized 3D positions keyed by node fingerprint.
func (g *Graph) Layout() graph.Layout {
	l := make(graph.Layout, len(g.Nodes))
	for i, n := range g.Nodes {
		l[n.ID.String()] = g.Position(i)
	}
	return l
}

// DecodeHeader parses and checks the fixed header. It does not require the
// rest of the buffer to be present.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < len(Magic) {
		return Header{}, errors.New(errors.ErrCodeTruncated, "need %d magic bytes, have %d", len(Magic), len(data))
	}
	if string(data[:len(Magic)]) != Magic {
		return Header{}, errors.New(errors.ErrCodeInvalidFormat, "bad magic %q", data[:len(Magic)])
	}
	if len(data) < headerSize {
		return Header{}, errors.New(errors.ErrCodeTruncated, "need %d header bytes, have %d", headerSize, len(data))
	}
	le := binary.LittleEndian
	h := Header{
		Version:     le.Uint16(data[4:]),
		NodeCount:   le.Uint32(data[6:]),
		EdgeCount:   le.Uint32(data[10:]),
		PieceCount:  le.Uint16(data[14:]),
		BoardWidth:  data[16],
		BoardHeight: data[17],
		ScaleX10:    le.Uint16(data[18:]),
	}
	if h.Version != Version {
		return Header{}, errors.New(errors.ErrCodeUnsupportedVersion, "version %d (supported: %d)", h.Version, Version)
	}
	if h.ScaleX10 == 0 {
		return Header{}, errors.New(errors.ErrCodeInvalidFormat, "position scale is zero")
	}
	return h, nil
}

// Decode parses a raw packed graph. The buffer must hold exactly the bytes
// the header announces.
func Decode(data []byte) (*Graph, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	size := h.Size()
	if uint64(len(data)) < size {
		return nil, errors.New(errors.ErrCodeTruncated, "header announces %d bytes, have %d", size, len(data))
	}
	if uint64(len(data)) > size {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%d trailing bytes after %d byte graph", uint64(len(data))-size, size)
	}

	r := reader{data: data, off: headerSize}
	g := &Graph{
		Header: h,
		Pieces: make([]klotski.PieceDef, h.PieceCount),
		Nodes:  make([]Node, h.NodeCount),
		Edges:  make([]Edge, h.EdgeCount),
	}

	for i := range g.Pieces {
		g.Pieces[i] = klotski.PieceDef{ID: i, Width: int(r.u8()), Height: int(r.u8())}
	}
	for i := range g.Nodes {
		copy(g.Nodes[i].ID[:], r.next(idSize))
	}
	for i := range g.Nodes {
		pos := make([]klotski.Cell, h.PieceCount)
		for k := range pos {
			pos[k] = klotski.Cell{X: int(r.u8()), Y: int(r.u8())}
		}
		g.Nodes[i].Positions = pos
	}
	for i := range g.Nodes {
		g.Nodes[i].XYZ = [3]int16{int16(r.u16()), int16(r.u16()), int16(r.u16())}
	}
	for i := range g.Edges {
		e := Edge{Source: r.u32(), Target: r.u32(), PieceID: r.u8()}
		if e.Source >= h.NodeCount || e.Target >= h.NodeCount {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %d references node %d/%d of %d", i, e.Source, e.Target, h.NodeCount)
		}
		dir, err := klotski.DirectionFromCode(r.u8())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edge %d", i)
		}
		e.Direction = dir
		g.Edges[i] = e
	}
	return g, nil
}

// reader walks a buffer whose length has already been checked.
type reader struct {
	data []byte
	off  int
}

func (r *reader) next(n int) []byte {
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8   { return r.next(1)[0] }
func (r *reader) u16() uint16 { return binary.LittleEndian.Uint16(r.next(2)) }
func (r *reader) u32() uint32 { return binary.LittleEndian.Uint32(r.next(4)) }
