package graph

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

func exploreSimple(t *testing.T) *klotski.Graph {
	t.Helper()
	start, err := klotski.Simple().State()
	if err != nil {
		t.Fatal(err)
	}
	g, err := klotski.Explore(context.Background(), start)
	if err != nil {
		t.Fatalf("Explore: %v", err)
	}
	return g
}

func TestMarshalGraph(t *testing.T) {
	g := exploreSimple(t)

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	var result Graph
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := result.Metadata; got != (Metadata{TotalNodes: 4, TotalEdges: 6, BoardWidth: 3, BoardHeight: 3}) {
		t.Errorf("metadata = %+v", got)
	}
	if len(result.Pieces) != 4 || result.Pieces[0] != (Piece{ID: 0, Width: 2, Height: 2}) {
		t.Errorf("pieces = %+v", result.Pieces)
	}
	if got := result.Nodes[0].ID; got != "553eef4f4212fb5cfa7ae3ec6c86c1e0" {
		t.Errorf("first node = %s", got)
	}
	if got := result.Nodes[0].Positions; len(got) != 4 || got[1] != [2]int{2, 0} {
		t.Errorf("first node positions = %v", got)
	}
	first := result.Edges[0]
	if first.PieceID != 1 || first.Direction != "down" || first.Source != result.Nodes[0].ID {
		t.Errorf("first edge = %+v", first)
	}
}

func TestMarshalGraphFieldNames(t *testing.T) {
	data, err := MarshalGraph(exploreSimple(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"metadata"`, `"total_nodes"`, `"board_height"`, `"pieces"`, `"positions"`, `"piece_id"`, `"direction"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("output missing key %s", key)
		}
	}
}

func TestMarshalGraphDeterministic(t *testing.T) {
	a, err := MarshalGraph(exploreSimple(t))
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalGraph(exploreSimple(t))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two exports of the same search differ")
	}
}

func TestRoundTrip(t *testing.T) {
	g := exploreSimple(t)

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	doc, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	back, err := ToKlotski(doc)
	if err != nil {
		t.Fatalf("ToKlotski: %v", err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("counts = %d/%d, want %d/%d", back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	for i := range g.Nodes {
		if back.Nodes[i].ID != g.Nodes[i].ID {
			t.Errorf("node %d id = %s, want %s", i, back.Nodes[i].ID, g.Nodes[i].ID)
		}
	}
	for i := range g.Edges {
		if back.Edges[i] != g.Edges[i] {
			t.Errorf("edge %d = %+v, want %+v", i, back.Edges[i], g.Edges[i])
		}
	}
	if back.Board != g.Board {
		t.Errorf("board = %+v, want %+v", back.Board, g.Board)
	}
}

func TestReadGraphInvalid(t *testing.T) {
	valid := FromKlotski(exploreSimple(t))

	tests := []struct {
		name   string
		mutate func(g *Graph)
	}{
		{"count mismatch", func(g *Graph) { g.Metadata.TotalNodes++ }},
		{"edge count mismatch", func(g *Graph) { g.Metadata.TotalEdges = 0 }},
		{"bad board", func(g *Graph) { g.Metadata.BoardWidth = 0 }},
		{"unsorted pieces", func(g *Graph) { g.Pieces[0], g.Pieces[1] = g.Pieces[1], g.Pieces[0] }},
		{"duplicate node", func(g *Graph) { g.Nodes[1].ID = g.Nodes[0].ID }},
		{"short positions", func(g *Graph) { g.Nodes[2].Positions = g.Nodes[2].Positions[:1] }},
		{"unknown target", func(g *Graph) { g.Edges[0].Target = strings.Repeat("0", 32) }},
		{"bad direction", func(g *Graph) { g.Edges[3].Direction = "sideways" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := cloneGraph(t, valid)
			tt.mutate(&doc)
			data, err := json.Marshal(doc)
			if err != nil {
				t.Fatal(err)
			}
			_, err = ReadGraph(bytes.NewReader(data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput && code != errors.ErrCodeInvalidBoard {
				t.Errorf("code = %s, want INVALID_INPUT or INVALID_BOARD (%v)", code, err)
			}
		})
	}
}

func TestReadGraphMalformedJSON(t *testing.T) {
	_, err := ReadGraph(strings.NewReader(`{invalid json}`))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestToKlotskiBadFingerprint(t *testing.T) {
	doc := FromKlotski(exploreSimple(t))
	old := doc.Nodes[0].ID
	doc.Nodes[0].ID = "not-hex"
	for i := range doc.Edges {
		if doc.Edges[i].Source == old {
			doc.Edges[i].Source = "not-hex"
		}
		if doc.Edges[i].Target == old {
			doc.Edges[i].Target = "not-hex"
		}
	}
	if _, err := ToKlotski(doc); err == nil {
		t.Error("expected error for non-hex node id")
	}
}

func TestReadGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statespace.json")
	if err := WriteGraphFile(exploreSimple(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	doc, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(doc.Nodes))
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseAfter(t *testing.T) {
	closeErr := stderrors.New("disk quota exceeded")
	writeErr := stderrors.New("encode failed")

	if err := closeAfter(failingCloser{closeErr}, nil, "out.json"); !stderrors.Is(err, closeErr) {
		t.Errorf("close error after a good write = %v, want %v", err, closeErr)
	}
	if err := closeAfter(failingCloser{closeErr}, writeErr, "out.json"); err != writeErr {
		t.Errorf("write error should win, got %v", err)
	}
	if err := closeAfter(failingCloser{}, nil, "out.json"); err != nil {
		t.Errorf("clean close = %v", err)
	}
}

func TestWriteGraphFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "statespace.json")
	if err := WriteGraphFile(exploreSimple(t), path); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	_, err := ReadGraphFile("nonexistent.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLayout(t *testing.T) {
	input := `[
		{"id": "b", "x": 1.5, "y": -2, "z": 0.25},
		{"id": "a", "x": 0, "y": 0, "z": 0},
		{"id": "b", "x": 3, "y": 3, "z": 3}
	]`
	l, err := ReadLayout(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("len = %d, want 2", len(l))
	}
	if got := l["b"]; got != [3]float64{3, 3, 3} {
		t.Errorf("b = %v, want last entry to win", got)
	}

	entries := l.Entries()
	if entries[0].ID != "a" || entries[1].ID != "b" {
		t.Errorf("entries not sorted: %+v", entries)
	}

	doc := Graph{Nodes: []Node{{ID: "a"}, {ID: "c"}, {ID: "d"}}}
	if got := l.Missing(doc); got != 2 {
		t.Errorf("Missing = %d, want 2", got)
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	want := Layout{"553eef4f4212fb5cfa7ae3ec6c86c1e0": {1, 2, 3}}
	if err := WriteLayoutFile(want, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}

	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got["553eef4f4212fb5cfa7ae3ec6c86c1e0"] != [3]float64{1, 2, 3} {
		t.Errorf("got %v", got)
	}

	if _, err := ReadLayout(strings.NewReader(`{"id": 1}`)); err == nil {
		t.Error("expected error for non-array layout")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func cloneGraph(t *testing.T, g Graph) Graph {
	t.Helper()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	var out Graph
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}
