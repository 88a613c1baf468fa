package klotski

import (
	"sync"
	"time"

	"github.com/matzehuels/klotskigraph/pkg/errors"
)

// PieceDef is the fixed shape of a piece, shared by every node of a graph.
type PieceDef struct {
	ID     int
	Width  int
	Height int
}

// Node is one reachable state. Positions holds each piece's corner ordered
// by piece id, matching Graph.Pieces.
type Node struct {
	ID        Fingerprint
	Positions []Cell
}

// Edge is one legal move from Source to Target. Several edges may share a
// (Source, Target) pair when different moves reach the same state.
type Edge struct {
	Source    Fingerprint
	Target    Fingerprint
	PieceID   int
	Direction Direction
}

// Stats describes one exploration run.
type Stats struct {
	Expanded    int           // states popped from the frontier
	MaxFrontier int           // largest frontier size observed
	Duration    time.Duration // wall time of the search
}

// Graph is the finished reachable-state graph. Nodes are in expansion order
// and edges in discovery order. A Graph is read-only once returned.
type Graph struct {
	Board  Board
	Pieces []PieceDef
	Nodes  []Node
	Edges  []Edge
	Policy Policy
	Stats  Stats

	index   map[Fingerprint]int
	adj     [][]int
	adjOnce sync.Once
}

// NewGraph assembles a graph from parts, typically decoded from an
// interchange document. It checks that node ids are unique, that every
// node has one position per piece, and that every edge endpoint is a node.
func NewGraph(board Board, pieces []PieceDef, nodes []Node, edges []Edge) (*Graph, error) {
	if err := errors.ValidateBoard(board.Width, board.Height); err != nil {
		return nil, err
	}
	for _, p := range pieces {
		if err := errors.ValidatePieceGeometry(p.ID, p.Width, p.Height); err != nil {
			return nil, err
		}
	}
	g := &Graph{
		Board:  board,
		Pieces: pieces,
		Nodes:  nodes,
		Edges:  edges,
		index:  make(map[Fingerprint]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %s", n.ID)
		}
		if len(n.Positions) != len(pieces) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"node %s has %d positions, want %d", n.ID, len(n.Positions), len(pieces))
		}
		g.index[n.ID] = i
	}
	for i, e := range edges {
		if _, ok := g.index[e.Source]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown source %s", i, e.Source)
		}
		if _, ok := g.index[e.Target]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown target %s", i, e.Target)
		}
		if !e.Direction.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d: invalid direction %d", i, e.Direction)
		}
	}
	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Index returns the position of fp in Nodes.
func (g *Graph) Index(fp Fingerprint) (int, bool) {
	i, ok := g.index[fp]
	return i, ok
}

// Node returns the node with the given fingerprint.
func (g *Graph) Node(fp Fingerprint) (Node, bool) {
	i, ok := g.index[fp]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// OutEdges returns the edges leaving fp in discovery order.
// The adjacency index is built on first use.
func (g *Graph) OutEdges(fp Fingerprint) []Edge {
	i, ok := g.index[fp]
	if !ok {
		return nil
	}
	g.adjOnce.Do(func() {
		g.adj = make([][]int, len(g.Nodes))
		for ei, e := range g.Edges {
			src := g.index[e.Source]
			g.adj[src] = append(g.adj[src], ei)
		}
	})
	out := make([]Edge, len(g.adj[i]))
	for k, ei := range g.adj[i] {
		out[k] = g.Edges[ei]
	}
	return out
}

// State rebuilds the full state of node i from the piece definitions.
func (g *Graph) State(i int) (*State, error) {
	if i < 0 || i >= len(g.Nodes) {
		return nil, errors.New(errors.ErrCodeNotFound, "node index %d out of range", i)
	}
	n := g.Nodes[i]
	pieces := make([]Piece, len(g.Pieces))
	for k, def := range g.Pieces {
		pos := n.Positions[k]
		pieces[k] = Piece{ID: def.ID, X: pos.X, Y: pos.Y, Width: def.Width, Height: def.Height}
	}
	return NewState(g.Board, pieces)
}
