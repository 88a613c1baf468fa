// Package pipeline provides the enumerate → pack pipeline for klotskigraph.
//
// This package implements the complete flow that the CLI and the artifact
// server share. By centralizing it, both entry points cache, log and report
// statistics the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Enumerate: breadth-first search of every reachable state of a puzzle,
//     producing the interchange [graph.Graph]
//  2. Pack: encode the graph and an external 3D layout into the fixed
//     binary format, then compress it with one or more codecs
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Puzzle: klotski.Classic(),
//	    Codecs: []string{"gzip", "zstd"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gz := result.Artifacts.Compressed["gzip"]
//
// Run individual stages:
//
//	doc, err := runner.Enumerate(ctx, opts)
//	artifacts, err := runner.Pack(ctx, doc, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/klotskigraph/pkg/cache"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/packed"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Enumerate options
	Puzzle          klotski.Puzzle `json:"-"`
	Policy          string         `json:"policy,omitempty"`
	MaxNodes        int            `json:"max_nodes,omitempty"`
	MaxEdges        int            `json:"max_edges,omitempty"`
	ProgressEvery   int            `json:"progress_every,omitempty"`
	CheckInvariants bool           `json:"check_invariants,omitempty"`
	Refresh         bool           `json:"refresh,omitempty"`

	// DumpEvery and Dump are passed to the explorer. A configured dump
	// always forces a fresh search.
	DumpEvery int                                 `json:"-"`
	Dump      func(visited []*klotski.State) error `json:"-"`

	// Pack options
	Layout graph.Layout `json:"-"`
	Codecs []string     `json:"codecs,omitempty"`
	Scale  float64      `json:"scale,omitempty"`

	// InputSize is the combined size of the JSON inputs, for savings stats.
	InputSize int64 `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	policy    klotski.Policy
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution in logs and the store.
	RunID string

	// Graph is the enumerated state space.
	Graph graph.Graph

	// GraphHash is the content hash of the graph's JSON encoding.
	GraphHash string

	// Artifacts holds the packed outputs.
	Artifacts *Artifacts

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Artifacts are the packed binary and its compressed encodings.
type Artifacts struct {
	// Raw is the uncompressed packed graph, the ".bin" debug output.
	Raw []byte

	// Compressed maps codec name to compressed bytes.
	Compressed map[string][]byte

	// Stats has one entry per requested codec, in request order.
	Stats []packed.Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	EnumerateTime time.Duration
	PackTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit    bool // Whether the graph came from cache
	ArtifactHit bool // Whether every artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForEnumerate(); err != nil {
		return err
	}
	if err := o.ValidateForPack(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForEnumerate checks the puzzle and search settings.
func (o *Options) ValidateForEnumerate() error {
	if len(o.Puzzle.Pieces) == 0 {
		return fmt.Errorf("puzzle is required")
	}
	p, err := klotski.ParsePolicy(o.Policy)
	if err != nil {
		return err
	}
	o.policy = p
	o.Policy = p.String()
	if o.MaxNodes <= 0 {
		o.MaxNodes = klotski.DefaultMaxNodes
	}
	if o.MaxEdges <= 0 {
		o.MaxEdges = klotski.DefaultMaxEdges
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = klotski.DefaultProgressEvery
	}
	o.setLogger()
	return nil
}

// ValidateForPack checks the codecs and scale.
func (o *Options) ValidateForPack() error {
	if len(o.Codecs) == 0 {
		o.Codecs = []string{packed.DefaultCodec}
	}
	seen := make(map[string]bool, len(o.Codecs))
	names := make([]string, 0, len(o.Codecs))
	for _, name := range o.Codecs {
		c, err := packed.CodecByName(name)
		if err != nil {
			return err
		}
		if !seen[c.Name()] {
			seen[c.Name()] = true
			names = append(names, c.Name())
		}
	}
	o.Codecs = names
	if o.Scale == 0 {
		o.Scale = packed.DefaultScale
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must be positive, got %g", o.Scale)
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// exploreOptions translates the settings for klotski.Explore.
func (o *Options) exploreOptions() []klotski.Option {
	opts := []klotski.Option{
		klotski.WithPolicy(o.policy),
		klotski.WithMaxNodes(o.MaxNodes),
		klotski.WithMaxEdges(o.MaxEdges),
		klotski.WithProgressEvery(o.ProgressEvery),
		klotski.WithLogger(o.Logger),
	}
	if o.CheckInvariants {
		opts = append(opts, klotski.WithInvariantChecks())
	}
	if o.DumpEvery > 0 && o.Dump != nil {
		opts = append(opts, klotski.WithDump(o.DumpEvery, o.Dump))
	}
	return opts
}

// GraphKeyOpts returns cache key options for enumeration.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Policy:   o.Policy,
		MaxNodes: o.MaxNodes,
		MaxEdges: o.MaxEdges,
	}
}

// ArtifactKeyOpts returns cache key options for one packed output.
func (o *Options) ArtifactKeyOpts(codec, positionsHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Codec:         codec,
		Scale:         o.Scale,
		PositionsHash: positionsHash,
	}
}

// skipGraphCache reports whether a cached graph must not be used.
func (o *Options) skipGraphCache() bool {
	return o.Refresh || (o.DumpEvery > 0 && o.Dump != nil)
}
