package klotski

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/observability"
)

func exploreSimple(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g, err := Explore(context.Background(), simpleState(t), opts...)
	require.NoError(t, err)
	return g
}

func TestExploreSimple(t *testing.T) {
	g := exploreSimple(t)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 6, g.EdgeCount())
	assert.Equal(t, Board{Width: 3, Height: 3}, g.Board)
	assert.Equal(t, PolicyGeometry, g.Policy)

	wantNodes := []string{
		"553eef4f4212fb5cfa7ae3ec6c86c1e0",
		"ec7db0e12f15fd89458ab811905797b3",
		"92ab642f40313c5aab47e2d11f9c93bd",
		"eef92862b5aefa94ae383247f7dec16e",
	}
	for i, n := range g.Nodes {
		assert.Equal(t, wantNodes[i], n.ID.String(), "node %d", i)
	}

	type edge struct {
		src, tgt, piece int
		dir             Direction
	}
	want := []edge{
		{0, 1, 1, Down},
		{0, 2, 3, Right},
		{1, 0, 1, Up},
		{2, 3, 2, Right},
		{2, 0, 3, Left},
		{3, 2, 2, Left},
	}
	for i, e := range g.Edges {
		src, ok := g.Index(e.Source)
		require.True(t, ok)
		tgt, ok := g.Index(e.Target)
		require.True(t, ok)
		assert.Equal(t, want[i], edge{src, tgt, e.PieceID, e.Direction}, "edge %d", i)
	}

	assert.Equal(t, 4, g.Stats.Expanded)
	assert.GreaterOrEqual(t, g.Stats.MaxFrontier, 1)
}

func TestExploreDeterministic(t *testing.T) {
	a := exploreSimple(t)
	b := exploreSimple(t)

	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Edges, b.Edges)
}

func TestExploreNoDuplicateNodes(t *testing.T) {
	g := exploreSimple(t)
	seen := make(map[Fingerprint]bool)
	for _, n := range g.Nodes {
		assert.False(t, seen[n.ID], "duplicate node %s", n.ID)
		seen[n.ID] = true
	}
}

func TestExploreCompleteness(t *testing.T) {
	g := exploreSimple(t)

	for i := range g.Nodes {
		s, err := g.State(i)
		require.NoError(t, err)
		out := g.OutEdges(g.Nodes[i].ID)
		require.Len(t, out, len(s.Moves()), "node %d", i)
		for _, m := range s.Moves() {
			_, ok := g.Index(m.Next.Fingerprint())
			assert.True(t, ok, "successor of node %d missing", i)
		}
	}
}

func TestExploreEdgesAreLegalMoves(t *testing.T) {
	for _, policy := range []Policy{PolicyGeometry, PolicyIdentity} {
		t.Run(policy.String(), func(t *testing.T) {
			g := exploreSimple(t, WithPolicy(policy))
			for i, e := range g.Edges {
				src, _ := g.Index(e.Source)
				s, err := g.State(src)
				require.NoError(t, err)

				next, ok := s.Apply(e.PieceID, e.Direction)
				require.True(t, ok, "edge %d is not a legal move", i)
				assert.Equal(t, e.Target, next.FingerprintWith(policy), "edge %d", i)

				if policy == PolicyIdentity {
					target, _ := g.Node(e.Target)
					assert.Equal(t, target.Positions, next.Positions(), "edge %d", i)
				}
			}
		})
	}
}

func TestExploreRelabelInvariance(t *testing.T) {
	base := exploreSimple(t)

	relabel := map[int]int{0: 3, 1: 0, 2: 1, 3: 2}
	pieces := Simple().Pieces
	relabelled := make([]Piece, len(pieces))
	for i, p := range pieces {
		p.ID = relabel[p.ID]
		relabelled[len(pieces)-1-i] = p
	}
	s, err := NewState(Board{Width: 3, Height: 3}, relabelled)
	require.NoError(t, err)
	g, err := Explore(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, base.NodeCount(), g.NodeCount())
	assert.Equal(t, base.EdgeCount(), g.EdgeCount())
	assert.Equal(t, base.Nodes[0].ID, g.Nodes[0].ID)
}

func TestExploreClassic(t *testing.T) {
	if testing.Short() {
		t.Skip("full classic enumeration")
	}
	start, err := Classic().State()
	require.NoError(t, err)

	g, err := Explore(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, 25955, g.NodeCount())
	assert.Equal(t, 83896, g.EdgeCount())
	assert.Equal(t, "08db371061a32cda5b5ca01323f425d4", g.Nodes[0].ID.String())
}

func TestExploreNodeLimit(t *testing.T) {
	_, err := Explore(context.Background(), simpleState(t), WithMaxNodes(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLimitExceeded), "got %v", err)

	var limit *errors.LimitExceededError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "nodes", limit.What)
	assert.Equal(t, 2, limit.Limit)
}

func TestExploreEdgeLimit(t *testing.T) {
	_, err := Explore(context.Background(), simpleState(t), WithMaxEdges(5))

	var limit *errors.LimitExceededError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, "edges", limit.What)
	assert.Equal(t, 6, limit.Seen)
}

func TestExploreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := Explore(ctx, simpleState(t))
	assert.Nil(t, g)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExploreNilState(t *testing.T) {
	_, err := Explore(context.Background(), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPuzzle))
}

func TestExploreInvariantChecks(t *testing.T) {
	g := exploreSimple(t, WithInvariantChecks())
	assert.Equal(t, 4, g.NodeCount())
}

func TestExploreProgressAndDump(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	var dumps [][]string
	dump := func(visited []*State) error {
		var boards []string
		for _, s := range visited {
			boards = append(boards, s.String())
		}
		dumps = append(dumps, boards)
		return nil
	}

	exploreSimple(t, WithLogger(logger), WithProgressEvery(2), WithDump(2, dump))

	assert.Contains(t, buf.String(), "processed states")
	assert.Contains(t, buf.String(), "state space complete")
	require.Len(t, dumps, 2)
	assert.Len(t, dumps[0], 2)
	assert.Len(t, dumps[1], 4)
	assert.Equal(t, "001\n001\n23.", dumps[0][0])
}

type recordingExploreHooks struct {
	observability.NoopExploreHooks
	started, progress int
	nodes, edges      int
	err               error
}

func (h *recordingExploreHooks) OnExploreStart(context.Context, int) { h.started++ }

func (h *recordingExploreHooks) OnProgress(context.Context, int, int, int) { h.progress++ }

func (h *recordingExploreHooks) OnExploreComplete(_ context.Context, nodes, edges int, _ time.Duration, err error) {
	h.nodes, h.edges, h.err = nodes, edges, err
}

func TestExploreHooks(t *testing.T) {
	hooks := &recordingExploreHooks{}
	observability.SetExploreHooks(hooks)
	t.Cleanup(observability.Reset)

	exploreSimple(t, WithProgressEvery(1))

	assert.Equal(t, 1, hooks.started)
	assert.Equal(t, 4, hooks.progress)
	assert.Equal(t, 4, hooks.nodes)
	assert.Equal(t, 6, hooks.edges)
	assert.NoError(t, hooks.err)
}
