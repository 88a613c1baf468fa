package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts an enumerated graph to indented JSON bytes.
func MarshalGraph(g *klotski.Graph) ([]byte, error) {
	return FromKlotski(g).Marshal()
}

// Marshal encodes the document as indented JSON, the same bytes WriteGraph
// produces.
func (gj Graph) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(gj, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes an enumerated graph to a JSON file.
// The file is created with 0644 permissions. A failed Close is reported
// since it can mean the data never reached the disk.
func WriteGraphFile(g *klotski.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return closeAfter(f, writeGraphTo(FromKlotski(g), f), path)
}

// closeAfter closes c and returns writeErr, or the close error when the
// write succeeded.
func closeAfter(c io.Closer, writeErr error, path string) error {
	if err := c.Close(); err != nil && writeErr == nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return writeErr
}

// WriteGraph writes an enumerated graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g *klotski.Graph, w io.Writer) error {
	return writeGraphTo(FromKlotski(g), w)
}

// ReadGraphFile reads and validates a JSON graph file.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes and validates a JSON graph from an io.Reader.
// Use ToKlotski on the result to get a navigable klotski.Graph.
func ReadGraph(r io.Reader) (Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(gj Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(gj); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	if err := data.Validate(); err != nil {
		return Graph{}, err
	}
	return data, nil
}
