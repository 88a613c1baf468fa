// Package klotski enumerates the complete reachable-state graph of a
// sliding-block puzzle.
//
// # Model
//
// A [Piece] is an axis-aligned rectangle on a [Board]. A [State] is one full
// assignment of positions to all pieces. States are never mutated: a move
// produces a new State that shares nothing with its parent except the board.
//
// # Identity
//
// Every State has a [Fingerprint], an MD5 digest of the canonical text of its
// sorted geometry. Under the default [PolicyGeometry] two states that differ
// only by swapping same-sized pieces are the same node. [PolicyIdentity]
// includes piece ids in the digest and keeps such states apart.
//
// # Exploration
//
// [Explore] runs a breadth-first search from an initial state:
//
//	start, _ := klotski.Classic().State()
//	g, err := klotski.Explore(ctx, start, klotski.WithMaxNodes(100_000))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(g.NodeCount(), g.EdgeCount())
//
// Every legal move from every reachable state becomes exactly one [Edge],
// including moves into states that were already discovered. Node and edge
// order is a pure function of the initial state and its piece order, so the
// output is bit-stable across runs.
//
// # Concurrency
//
// Exploration is single-threaded. A finished [Graph] is read-only and safe
// for concurrent readers.
package klotski
