package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

// =============================================================================
// Graph - State-Space Serialization
// =============================================================================

// Graph is the canonical interchange format for an enumerated state space.
// Used for JSON files, caching, the document store, and as the input of the
// binary packer.
//
// Nodes keep expansion order and edges keep discovery order, so a graph
// exported twice from the same search is byte-identical.
type Graph struct {
	Metadata Metadata `json:"metadata" bson:"metadata"`
	Pieces   []Piece  `json:"pieces" bson:"pieces"`
	Nodes    []Node   `json:"nodes" bson:"nodes"`
	Edges    []Edge   `json:"edges" bson:"edges"`
}

// Metadata carries the counts and board size of a graph.
type Metadata struct {
	TotalNodes  int `json:"total_nodes" bson:"total_nodes"`
	TotalEdges  int `json:"total_edges" bson:"total_edges"`
	BoardWidth  int `json:"board_width" bson:"board_width"`
	BoardHeight int `json:"board_height" bson:"board_height"`
}

// Piece is the shape of one piece. Pieces are sorted by ID.
type Piece struct {
	ID     int `json:"id" bson:"id"`
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// Node is one state: its fingerprint and the [x, y] corner of every piece,
// in the same order as Graph.Pieces.
type Node struct {
	ID        string   `json:"id" bson:"id"`
	Positions [][2]int `json:"positions" bson:"positions"`
}

// Edge is one move. Direction is "up", "down", "left" or "right".
type Edge struct {
	Source    string `json:"source" bson:"source"`
	Target    string `json:"target" bson:"target"`
	PieceID   int    `json:"piece_id" bson:"piece_id"`
	Direction string `json:"direction" bson:"direction"`
}

// =============================================================================
// klotski.Graph ↔ Graph Conversion
// =============================================================================

// FromKlotski converts an enumerated graph to its serialization format.
func FromKlotski(g *klotski.Graph) Graph {
	out := Graph{
		Metadata: Metadata{
			TotalNodes:  g.NodeCount(),
			TotalEdges:  g.EdgeCount(),
			BoardWidth:  g.Board.Width,
			BoardHeight: g.Board.Height,
		},
		Pieces: make([]Piece, len(g.Pieces)),
		Nodes:  make([]Node, len(g.Nodes)),
		Edges:  make([]Edge, len(g.Edges)),
	}

	for i, p := range g.Pieces {
		out.Pieces[i] = Piece{ID: p.ID, Width: p.Width, Height: p.Height}
	}
	for i, n := range g.Nodes {
		pos := make([][2]int, len(n.Positions))
		for k, c := range n.Positions {
			pos[k] = [2]int{c.X, c.Y}
		}
		out.Nodes[i] = Node{ID: n.ID.String(), Positions: pos}
	}
	for i, e := range g.Edges {
		out.Edges[i] = Edge{
			Source:    e.Source.String(),
			Target:    e.Target.String(),
			PieceID:   e.PieceID,
			Direction: e.Direction.String(),
		}
	}
	return out
}

// ToKlotski converts a serialized graph back to a klotski.Graph.
// Returns an error if the document is inconsistent (see Validate).
func ToKlotski(gj Graph) (*klotski.Graph, error) {
	if err := gj.Validate(); err != nil {
		return nil, err
	}

	pieces := make([]klotski.PieceDef, len(gj.Pieces))
	for i, p := range gj.Pieces {
		pieces[i] = klotski.PieceDef{ID: p.ID, Width: p.Width, Height: p.Height}
	}

	nodes := make([]klotski.Node, len(gj.Nodes))
	for i, nj := range gj.Nodes {
		id, err := klotski.ParseFingerprint(nj.ID)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		pos := make([]klotski.Cell, len(nj.Positions))
		for k, xy := range nj.Positions {
			pos[k] = klotski.Cell{X: xy[0], Y: xy[1]}
		}
		nodes[i] = klotski.Node{ID: id, Positions: pos}
	}

	edges := make([]klotski.Edge, len(gj.Edges))
	for i, ej := range gj.Edges {
		src, err := klotski.ParseFingerprint(ej.Source)
		if err != nil {
			return nil, fmt.Errorf("edge %d source: %w", i, err)
		}
		tgt, err := klotski.ParseFingerprint(ej.Target)
		if err != nil {
			return nil, fmt.Errorf("edge %d target: %w", i, err)
		}
		dir, err := klotski.ParseDirection(ej.Direction)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges[i] = klotski.Edge{Source: src, Target: tgt, PieceID: ej.PieceID, Direction: dir}
	}

	board := klotski.Board{Width: gj.Metadata.BoardWidth, Height: gj.Metadata.BoardHeight}
	return klotski.NewGraph(board, pieces, nodes, edges)
}

// Validate checks that the document is self-consistent: metadata counts
// match, piece ids are ascending, node ids are unique, every node has one
// position per piece, and every edge references known nodes with a valid
// direction name.
func (gj Graph) Validate() error {
	if gj.Metadata.TotalNodes != len(gj.Nodes) {
		return errors.New(errors.ErrCodeInvalidInput,
			"metadata.total_nodes is %d but %d nodes are present", gj.Metadata.TotalNodes, len(gj.Nodes))
	}
	if gj.Metadata.TotalEdges != len(gj.Edges) {
		return errors.New(errors.ErrCodeInvalidInput,
			"metadata.total_edges is %d but %d edges are present", gj.Metadata.TotalEdges, len(gj.Edges))
	}
	if err := errors.ValidateBoard(gj.Metadata.BoardWidth, gj.Metadata.BoardHeight); err != nil {
		return err
	}
	for i, p := range gj.Pieces {
		if err := errors.ValidatePieceGeometry(p.ID, p.Width, p.Height); err != nil {
			return err
		}
		if i > 0 && p.ID <= gj.Pieces[i-1].ID {
			return errors.New(errors.ErrCodeInvalidInput, "pieces must be sorted by unique id (piece %d follows %d)", p.ID, gj.Pieces[i-1].ID)
		}
	}

	index := gj.Index()
	if len(index) != len(gj.Nodes) {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate node ids")
	}
	for _, n := range gj.Nodes {
		if len(n.Positions) != len(gj.Pieces) {
			return errors.New(errors.ErrCodeInvalidInput,
				"node %s has %d positions, want %d", n.ID, len(n.Positions), len(gj.Pieces))
		}
	}
	for i, e := range gj.Edges {
		if _, ok := index[e.Source]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown source %q", i, e.Source)
		}
		if _, ok := index[e.Target]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown target %q", i, e.Target)
		}
		if _, err := klotski.ParseDirection(e.Direction); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return nil
}

// Index maps every node id to its position in Nodes. When ids repeat the
// first occurrence wins.
func (gj Graph) Index() map[string]int {
	index := make(map[string]int, len(gj.Nodes))
	for i, n := range gj.Nodes {
		if _, dup := index[n.ID]; !dup {
			index[n.ID] = i
		}
	}
	return index
}

// UnmarshalGraph deserializes JSON bytes to a Graph without validating it.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal graph")
	}
	return g, nil
}
