// Package pkg provides the core libraries for klotskigraph.
//
// # Overview
//
// klotskigraph enumerates the complete state space of a sliding-block puzzle
// (Klotski, "Huarong Road") and packs it into a compact binary file that a
// 3D viewer can load in one request. The pkg directory is organized into
// these areas:
//
//  1. [klotski] - Domain logic (pieces, boards, moves, breadth-first search)
//  2. [graph] - Serialization types for state graphs and 3D layouts
//  3. [packed] - The fixed-layout KLGR binary format and its codecs
//  4. [pipeline] - Orchestration (enumerate → pack) with caching
//  5. [cache], [store] - Infrastructure (result cache, graph archive)
//
// # Architecture
//
// The typical data flow through klotskigraph:
//
//	Puzzle preset or TOML file
//	         ↓
//	    [klotski] package (explore every reachable state)
//	         ↓
//	    [graph] package (JSON interchange + external positions)
//	         ↓
//	    [packed] package (binary encoding + compression)
//	         ↓
//	    .bin / .gz / .zst output, HTTP server, MongoDB archive
//
// # Quick Start
//
// Enumerate the classic puzzle and pack it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/klotskigraph/pkg/graph"
//	    "github.com/matzehuels/klotskigraph/pkg/klotski"
//	    "github.com/matzehuels/klotskigraph/pkg/packed"
//	)
//
//	// 1. Explore
//	start, _ := klotski.Classic().State()
//	g, _ := klotski.Explore(context.Background(), start)
//
//	// 2. Convert to the interchange format
//	doc := graph.FromKlotski(g)
//
//	// 3. Pack with a layout
//	layout, _ := graph.ReadLayoutFile("node_positions.json")
//	raw, _ := packed.Encode(doc, layout, packed.Options{})
//
//	// 4. Compress
//	gz, _ := packed.CodecByName("gzip")
//	data, _ := gz.Compress(raw)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [klotski] - Pieces, boards and immutable states. A state's fingerprint is
// the MD5 of its canonical text under an identity policy: "geometry" treats
// same-sized pieces as interchangeable, "identity" does not. [klotski.Explore]
// runs the breadth-first search with node and edge ceilings.
//
// ## Serialization
//
// [graph] - The JSON interchange document (metadata, pieces, nodes, edges)
// and the external position table keyed by fingerprint.
//
// [packed] - The KLGR little-endian binary layout: a 20-byte header, piece
// sizes, node ids, piece positions, quantized coordinates and edges. Codecs
// (raw, gzip, zlib, zstd) are detected from their magic bytes.
//
// ## Infrastructure
//
// [pipeline] - Complete enumerate → pack pipeline used by the CLI and the
// artifact server. Ensures consistent caching and statistics across entry
// points.
//
// [cache] - Result cache with file, Redis and null backends. Keys are
// derived from content hashes so stale entries are never served.
//
// [store] - Graph archive with MongoDB and in-memory backends.
//
// [errors] - Structured errors with codes for every failure the core can
// report.
//
// [observability] - Hooks for exploration progress, cache traffic and
// packing results.
//
// # Common Workflows
//
// Load a custom puzzle:
//
//	p, _ := klotski.LoadPuzzleFile("examples/puzzles/pennant.toml")
//	start, _ := p.State()
//	fmt.Println(start)
//
// Run the full pipeline with caching:
//
//	fc, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(fc, nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{Puzzle: klotski.Simple()})
//
// Decode an artifact without knowing its codec:
//
//	g, codec, _ := packed.Open(data)
//	fmt.Println(codec.Name(), g.Header.NodeCount)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/klotski/...            # Specific package
//	go test -run Example                 # Examples only
//
// [klotski]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/klotski
// [graph]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/graph
// [packed]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/packed
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/klotskigraph/pkg/observability
package pkg
