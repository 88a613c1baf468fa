package klotski

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/observability"
)

const (
	// DefaultMaxNodes is the node ceiling applied when none is configured.
	// The classic 4x5 puzzle has well under a hundred thousand states.
	DefaultMaxNodes = 2_000_000

	// DefaultMaxEdges is the edge ceiling applied when none is configured.
	DefaultMaxEdges = 20_000_000

	// DefaultProgressEvery is how many expansions pass between progress logs.
	DefaultProgressEvery = 1000
)

// Option configures Explore.
type Option func(*Options)

// Options holds the exploration settings. The zero value is not valid;
// use DefaultOptions.
type Options struct {
	MaxNodes        int
	MaxEdges        int
	Policy          Policy
	Logger          *log.Logger
	ProgressEvery   int
	CheckInvariants bool

	// DumpEvery, when positive, calls Dump with every visited state after
	// each DumpEvery expansions.
	DumpEvery int
	Dump      func(visited []*State) error
}

// DefaultOptions returns the settings used when Explore gets no options.
func DefaultOptions() Options {
	return Options{
		MaxNodes:      DefaultMaxNodes,
		MaxEdges:      DefaultMaxEdges,
		Policy:        PolicyGeometry,
		Logger:        log.NewWithOptions(io.Discard, log.Options{}),
		ProgressEvery: DefaultProgressEvery,
	}
}

// WithMaxNodes caps the number of distinct states. Values <= 0 are ignored.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxNodes = n
		}
	}
}

// WithMaxEdges caps the number of recorded edges. Values <= 0 are ignored.
func WithMaxEdges(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxEdges = n
		}
	}
}

// WithPolicy selects the fingerprint identity policy.
func WithPolicy(p Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithLogger sets the progress logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithProgressEvery sets the number of expansions between progress logs.
func WithProgressEvery(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ProgressEvery = n
		}
	}
}

// WithInvariantChecks validates every successor state for overlap. A
// violation aborts with COLLISION_INVARIANT; with a correct move generator
// it never fires.
func WithInvariantChecks() Option {
	return func(o *Options) { o.CheckInvariants = true }
}

// WithDump calls fn with all visited states every n expansions.
func WithDump(n int, fn func(visited []*State) error) Option {
	return func(o *Options) {
		if n > 0 && fn != nil {
			o.DumpEvery = n
			o.Dump = fn
		}
	}
}

// explorer holds the mutable search state of one Explore call. All of it is
// created together and dropped together when the call returns.
type explorer struct {
	ctx  context.Context
	opts Options

	frontier []*State
	inFlight map[Fingerprint]struct{}
	visited  map[Fingerprint]int
	states   []*State

	edges      []Edge
	discovered int
	stats      Stats
}

// Explore enumerates every state reachable from initial by breadth-first
// search and returns the full graph.
//
// Each popped state's moves are all recorded as edges, even when the target
// was seen before; a target is enqueued only if it is neither visited nor
// already in the frontier. The popped state joins the visited table after
// its moves are processed.
//
// Exceeding the node or edge ceiling aborts with EXPLORATION_LIMIT and no
// graph. Cancelling ctx aborts with ctx.Err().
func Explore(ctx context.Context, initial *State, opts ...Option) (*Graph, error) {
	if initial == nil {
		return nil, errors.New(errors.ErrCodeInvalidPuzzle, "initial state is nil")
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	hooks := observability.Explore()
	hooks.OnExploreStart(ctx, initial.Len())
	start := time.Now()

	e := &explorer{
		ctx:      ctx,
		opts:     o,
		inFlight: make(map[Fingerprint]struct{}),
		visited:  make(map[Fingerprint]int),
	}
	g, err := e.run(initial)
	elapsed := time.Since(start)

	nodes, edges := len(e.states), len(e.edges)
	hooks.OnExploreComplete(ctx, nodes, edges, elapsed, err)
	if err != nil {
		o.Logger.Error("exploration aborted", "expanded", e.stats.Expanded, "err", err)
		return nil, err
	}

	g.Stats.Duration = elapsed
	o.Logger.Info("state space complete", "nodes", nodes, "edges", edges, "duration", elapsed.Round(time.Millisecond))
	return g, nil
}

func (e *explorer) run(initial *State) (*Graph, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	e.enqueue(initial, initial.FingerprintWith(e.opts.Policy))

	for len(e.frontier) > 0 {
		select {
		case <-e.ctx.Done():
			return nil, e.ctx.Err()
		default:
		}

		current := e.dequeue()
		currentFP := current.FingerprintWith(e.opts.Policy)
		delete(e.inFlight, currentFP)
		e.stats.Expanded++
		e.progress()

		for _, m := range current.Moves() {
			if e.opts.CheckInvariants {
				if err := m.Next.Validate(); err != nil {
					return nil, errors.Wrap(errors.ErrCodeCollision, err,
						"piece %d moving %s from %s", m.PieceID, m.Direction, currentFP)
				}
			}
			nextFP := m.Next.FingerprintWith(e.opts.Policy)
			e.edges = append(e.edges, Edge{
				Source:    currentFP,
				Target:    nextFP,
				PieceID:   m.PieceID,
				Direction: m.Direction,
			})
			if len(e.edges) > e.opts.MaxEdges {
				return nil, &errors.LimitExceededError{What: "edges", Limit: e.opts.MaxEdges, Seen: len(e.edges)}
			}
			if e.known(nextFP) {
				continue
			}
			e.enqueue(m.Next, nextFP)
			if e.discovered > e.opts.MaxNodes {
				return nil, &errors.LimitExceededError{What: "nodes", Limit: e.opts.MaxNodes, Seen: e.discovered}
			}
		}

		e.visited[currentFP] = len(e.states)
		e.states = append(e.states, current)

		if err := e.dump(); err != nil {
			return nil, err
		}
	}
	return e.graph(initial), nil
}

// known reports whether fp is already visited or waiting in the frontier.
func (e *explorer) known(fp Fingerprint) bool {
	if _, ok := e.visited[fp]; ok {
		return true
	}
	_, ok := e.inFlight[fp]
	return ok
}

func (e *explorer) enqueue(s *State, fp Fingerprint) {
	e.frontier = append(e.frontier, s)
	e.inFlight[fp] = struct{}{}
	e.discovered++
	if len(e.frontier) > e.stats.MaxFrontier {
		e.stats.MaxFrontier = len(e.frontier)
	}
}

func (e *explorer) dequeue() *State {
	s := e.frontier[0]
	e.frontier[0] = nil
	e.frontier = e.frontier[1:]
	return s
}

func (e *explorer) progress() {
	n := e.stats.Expanded
	if n%e.opts.ProgressEvery != 0 {
		return
	}
	e.opts.Logger.Info("processed states",
		"processed", n,
		"queue", len(e.frontier),
		"unique", len(e.states))
	observability.Explore().OnProgress(e.ctx, n, len(e.frontier), e.discovered)
}

func (e *explorer) dump() error {
	if e.opts.DumpEvery <= 0 || e.stats.Expanded%e.opts.DumpEvery != 0 {
		return nil
	}
	e.opts.Logger.Debug("dumping visited states", "count", len(e.states))
	if err := e.opts.Dump(e.states); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "dump visited states")
	}
	return nil
}

// graph converts the visited table into the final artifact.
func (e *explorer) graph(initial *State) *Graph {
	nodes := make([]Node, len(e.states))
	for i, s := range e.states {
		nodes[i] = Node{ID: s.FingerprintWith(e.opts.Policy), Positions: s.Positions()}
	}
	return &Graph{
		Board:  initial.Board(),
		Pieces: initial.Definitions(),
		Nodes:  nodes,
		Edges:  e.edges,
		Policy: e.opts.Policy,
		Stats:  e.stats,
		index:  e.visited,
	}
}
