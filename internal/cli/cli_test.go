package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/store"
)

// runCLI executes the root command with args in an isolated XDG
// environment and returns what the command wrote to its output.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	root := newRootCommand(New(io.Discard, LogInfo))
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestRootCommandTree(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"enumerate", "pack", "inspect", "serve", "publish", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestEnumeratePackInspect(t *testing.T) {
	dir := t.TempDir()
	statespace := filepath.Join(dir, "simple.json")
	base := filepath.Join(dir, "simple_packed")

	runCLI(t, "enumerate", "--puzzle", "simple", "-o", statespace)

	doc, err := graph.ReadGraphFile(statespace)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 4 || len(doc.Edges) != 6 {
		t.Fatalf("counts = %d/%d, want 4/6", len(doc.Nodes), len(doc.Edges))
	}

	runCLI(t, "pack", "--statespace", statespace, "-o", base, "--codec", "gzip,zstd")

	raw, err := os.ReadFile(base + ".bin")
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 208 {
		t.Errorf("raw size = %d, want 208", len(raw))
	}
	for _, ext := range []string{".gz", ".zst"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	decoded := filepath.Join(dir, "decoded.json")
	runCLI(t, "inspect", base+".zst", "-o", decoded)

	back, err := graph.ReadGraphFile(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Nodes) != 4 || len(back.Edges) != 6 {
		t.Errorf("decoded counts = %d/%d, want 4/6", len(back.Nodes), len(back.Edges))
	}
	for i := range doc.Nodes {
		if back.Nodes[i].ID != doc.Nodes[i].ID {
			t.Errorf("node %d id = %s, want %s", i, back.Nodes[i].ID, doc.Nodes[i].ID)
		}
	}
}

func TestEnumerateDump(t *testing.T) {
	dir := t.TempDir()
	dumpFile := filepath.Join(dir, "visited.txt")
	runCLI(t, "enumerate", "--puzzle", "simple", "--no-cache",
		"-o", filepath.Join(dir, "out.json"),
		"--dump-every", "1", "--dump-file", dumpFile)

	data, err := os.ReadFile(dumpFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "State Hash: "); got != 4 {
		t.Errorf("dump has %d states, want 4", got)
	}
}

func TestEnumeratePuzzleFile(t *testing.T) {
	dir := t.TempDir()
	puzzle := filepath.Join(dir, "tiny.toml")
	src := `name = "tiny"
width = 2
height = 1

[[pieces]]
id = 0
x = 0
y = 0
w = 1
h = 1
`
	if err := os.WriteFile(puzzle, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "tiny.json")
	runCLI(t, "enumerate", "--puzzle-file", puzzle, "-o", out)

	doc, err := graph.ReadGraphFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 2 || len(doc.Edges) != 2 {
		t.Errorf("counts = %d/%d, want 2/2", len(doc.Nodes), len(doc.Edges))
	}
}

func TestEnumerateLimit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCommand(New(io.Discard, LogInfo))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"enumerate", "--puzzle", "simple", "--no-cache", "--max-nodes", "2",
		"-o", filepath.Join(t.TempDir(), "out.json")})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected the node ceiling to abort the search")
	}
}

func TestServeRequiresInput(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCommand(New(io.Discard, LogInfo))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("serve without an artifact or --puzzle should fail")
	}
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	statespace := filepath.Join(dir, "simple.json")
	runCLI(t, "enumerate", "--puzzle", "simple", "--no-cache", "-o", statespace)

	ctx := context.Background()
	s := store.NewMemoryStore()
	c := New(io.Discard, LogInfo)
	if err := c.runPublish(ctx, s, statespace, "", "geometry"); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Latest(ctx, klotski.Simple().Hash())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Puzzle != "simple" || rec.Policy != "geometry" {
		t.Errorf("record = %s/%s, want simple/geometry", rec.Puzzle, rec.Policy)
	}
	if len(rec.Graph.Nodes) != 4 {
		t.Errorf("stored %d nodes, want 4", len(rec.Graph.Nodes))
	}

	if err := c.runPublish(ctx, s, statespace, "", "shape"); err == nil {
		t.Error("unknown policy should be rejected")
	}
}

func TestPublishRequiresURI(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCommand(New(io.Discard, LogInfo))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"publish", "missing.json"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("publish without a mongo uri should fail")
	}
}

func TestStartPuzzleCustom(t *testing.T) {
	s, err := klotski.NewState(klotski.Board{Width: 2, Height: 1}, []klotski.Piece{{ID: 0, Width: 1, Height: 1}})
	if err != nil {
		t.Fatal(err)
	}
	g, err := klotski.Explore(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	p, err := startPuzzle(graph.FromKlotski(g))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "custom" {
		t.Errorf("Name = %q, want custom", p.Name)
	}
	if p.Board.Width != 2 || len(p.Pieces) != 1 {
		t.Errorf("puzzle = %+v", p)
	}
}

func TestPresetListModel(t *testing.T) {
	presets := klotski.Presets()
	m := NewPresetListModel(presets)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(PresetListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after down, want 1", m.Cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(PresetListModel)
	if m.Cursor != len(presets)-1 {
		t.Errorf("Cursor moved past the last preset: %d", m.Cursor)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PresetListModel)
	if cmd == nil || m.Selected == nil || m.Selected.Name != presets[len(presets)-1].Name {
		t.Errorf("enter should select and quit, got %+v", m.Selected)
	}

	m = NewPresetListModel(presets)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if sel := next.(PresetListModel).Selected; sel == nil || sel.Name != presets[0].Name {
		t.Errorf("key 1 should select %s", presets[0].Name)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if next.(PresetListModel).Selected != nil {
		t.Error("q should quit without selecting")
	}

	if !strings.Contains(m.View(), presets[0].Name) {
		t.Error("View should list preset names")
	}
}
