package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/klotskigraph/pkg/cache"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/observability"
	"github.com/matzehuels/klotskigraph/pkg/packed"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the artifact server use it to avoid duplicating caching
// logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete enumerate → pack pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	if opts.Logger == nil {
		opts.Logger = r.Logger.With("run", result.RunID[:8])
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	// Stage 1: Enumerate
	start := time.Now()
	doc, graphHit, err := r.EnumerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("enumerate: %w", err)
	}
	result.Graph = doc
	result.Stats.EnumerateTime = time.Since(start)
	result.Stats.NodeCount = len(doc.Nodes)
	result.Stats.EdgeCount = len(doc.Edges)
	result.CacheInfo.GraphHit = graphHit
	if data, err := doc.Marshal(); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	logger.Info("enumerated state space",
		"puzzle", opts.Puzzle.Name,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", graphHit,
		"duration", result.Stats.EnumerateTime)

	// Stage 2: Pack
	start = time.Now()
	artifacts, artifactHit, err := r.PackWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.PackTime = time.Since(start)
	result.CacheInfo.ArtifactHit = artifactHit

	logger.Info("packed graph",
		"raw_size", len(artifacts.Raw),
		"codecs", opts.Codecs,
		"cached", artifactHit,
		"duration", result.Stats.PackTime)

	return result, nil
}

// EnumerateWithCacheInfo explores the puzzle with caching and returns cache
// hit info. A cached graph is keyed by the puzzle hash and every option
// that can change the search result.
func (r *Runner) EnumerateWithCacheInfo(ctx context.Context, opts Options) (graph.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForEnumerate(); err != nil {
		return graph.Graph{}, false, err
	}

	key := r.Keyer.GraphKey(opts.Puzzle.Hash(), opts.GraphKeyOpts())

	if !opts.skipGraphCache() {
		if data, ok := r.lookup(ctx, key); ok {
			doc, err := graph.UnmarshalGraph(data)
			if err == nil && doc.Validate() == nil {
				return doc, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached graph", "key", key)
		}
	}

	doc, err := Enumerate(ctx, opts)
	if err != nil {
		return graph.Graph{}, false, err
	}

	if data, err := doc.Marshal(); err == nil {
		r.store(ctx, key, data, cache.TTLGraph)
	}
	return doc, false, nil
}

// Enumerate is a convenience wrapper that calls EnumerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Enumerate(ctx context.Context, opts Options) (graph.Graph, error) {
	doc, _, err := r.EnumerateWithCacheInfo(ctx, opts)
	return doc, err
}

// Enumerate explores every state reachable from the puzzle's start layout
// without any caching.
func Enumerate(ctx context.Context, opts Options) (graph.Graph, error) {
	if err := opts.ValidateForEnumerate(); err != nil {
		return graph.Graph{}, err
	}
	state, err := opts.Puzzle.State()
	if err != nil {
		return graph.Graph{}, err
	}
	g, err := klotski.Explore(ctx, state, opts.exploreOptions()...)
	if err != nil {
		return graph.Graph{}, err
	}
	return graph.FromKlotski(g), nil
}

// PackWithCacheInfo encodes doc with opts.Layout and compresses it with
// every requested codec. The bool reports whether all outputs came from
// cache.
func (r *Runner) PackWithCacheInfo(ctx context.Context, doc graph.Graph, opts Options) (*Artifacts, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPack(); err != nil {
		return nil, false, err
	}

	docData, err := doc.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(docData)
	positionsHash := ""
	if len(opts.Layout) > 0 {
		if data, err := graph.MarshalLayout(opts.Layout); err == nil {
			positionsHash = cache.Hash(data)
		}
	}
	keyFor := func(codec string) string {
		return r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(codec, positionsHash))
	}

	missing := opts.Layout.Missing(doc)
	if missing > 0 {
		opts.Logger.Warn("nodes without positions are packed at the origin",
			"missing", missing,
			"total", len(doc.Nodes))
		observability.Pack().OnMissingPositions(ctx, missing)
	}

	if !opts.Refresh {
		if out, ok := r.cachedArtifacts(ctx, opts.Codecs, keyFor); ok {
			out.Stats = statsFor(doc, opts, out, missing)
			return out, true, nil
		}
	}

	out, err := Pack(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}
	out.Stats = statsFor(doc, opts, out, missing)

	r.store(ctx, keyFor(packed.CodecRaw), out.Raw, cache.TTLArtifact)
	for name, data := range out.Compressed {
		r.store(ctx, keyFor(name), data, cache.TTLArtifact)
	}
	return out, false, nil
}

// Pack is a convenience wrapper that calls PackWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Pack(ctx context.Context, doc graph.Graph, opts Options) (*Artifacts, error) {
	out, _, err := r.PackWithCacheInfo(ctx, doc, opts)
	return out, err
}

// Pack encodes doc once and compresses the result with each codec
// concurrently, without any caching.
func Pack(ctx context.Context, doc graph.Graph, opts Options) (*Artifacts, error) {
	if err := opts.ValidateForPack(); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := packed.Encode(doc, opts.Layout, packed.Options{Scale: opts.Scale})
	if err != nil {
		return nil, err
	}

	compressed := make([][]byte, len(opts.Codecs))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range opts.Codecs {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := packed.CodecByName(name)
			if err != nil {
				return err
			}
			data, err := c.Compress(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			compressed[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Artifacts{Raw: raw, Compressed: make(map[string][]byte, len(opts.Codecs))}
	duration := time.Since(start)
	for i, name := range opts.Codecs {
		out.Compressed[name] = compressed[i]
		observability.Pack().OnPackComplete(ctx, name, len(raw), len(compressed[i]), duration)
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cachedArtifacts returns the raw and every compressed output, or false if
// any of them is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, codecs []string, keyFor func(string) string) (*Artifacts, bool) {
	raw, ok := r.lookup(ctx, keyFor(packed.CodecRaw))
	if !ok {
		return nil, false
	}
	out := &Artifacts{Raw: raw, Compressed: make(map[string][]byte, len(codecs))}
	for _, name := range codecs {
		data, ok := r.lookup(ctx, keyFor(name))
		if !ok {
			return nil, false
		}
		out.Compressed[name] = data
	}
	return out, true
}

// lookup reads key from the cache. Read failures are logged and treated as
// a miss.
func (r *Runner) lookup(ctx context.Context, key string) ([]byte, bool) {
	keyType := cache.KeyType(key)
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	r.Logger.Debug("cache hit", "key", key)
	return data, true
}

// store writes key to the cache. Write failures are logged and ignored.
func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyType(key), len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func statsFor(doc graph.Graph, opts Options, out *Artifacts, missing int) []packed.Stats {
	stats := make([]packed.Stats, 0, len(opts.Codecs))
	for _, name := range opts.Codecs {
		stats = append(stats, packed.Stats{
			Nodes:            len(doc.Nodes),
			Edges:            len(doc.Edges),
			Pieces:           len(doc.Pieces),
			Codec:            name,
			RawSize:          len(out.Raw),
			CompressedSize:   len(out.Compressed[name]),
			MissingPositions: missing,
			InputSize:        opts.InputSize,
		})
	}
	return stats
}
