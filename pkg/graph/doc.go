// Package graph provides serialization types for enumerated state spaces and
// their 3D layouts.
//
// This package defines the canonical interchange format for klotskigraph data,
// used for JSON files, caching, the document store, and as the input of the
// binary packer.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/klotski.Graph: Internal graph representation
//   - pkg/packed: Binary encoding built from [Graph] and [Layout]
//
// Use [FromKlotski]/[ToKlotski] to convert between them.
//
// # Graph Serialization
//
// Graphs use a metadata header followed by pieces, nodes and edges:
//
//	{
//	  "metadata": {"total_nodes": 4, "total_edges": 6, "board_width": 3, "board_height": 3},
//	  "pieces": [{"id": 0, "width": 2, "height": 2}, ...],
//	  "nodes": [{"id": "553eef4f...", "positions": [[0, 0], [2, 0], [0, 2], [1, 2]]}, ...],
//	  "edges": [{"source": "553eef4f...", "target": "ec7db0e1...", "piece_id": 1, "direction": "down"}, ...]
//	}
//
// Node positions are ordered like pieces, that is by piece id.
//
// Common operations:
//
//	graph.WriteGraphFile(g, "statespace.json")  // klotski.Graph → File
//	doc, _ := graph.ReadGraphFile("statespace.json")
//	g, _ := graph.ToKlotski(doc)                // Graph → klotski.Graph
//
// # Layout Serialization
//
// Layouts are flat arrays of {id, x, y, z} entries produced by an external
// layout tool:
//
//	layout, _ := graph.ReadLayoutFile("positions.json")
//	xyz, ok := layout[doc.Nodes[0].ID]
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
