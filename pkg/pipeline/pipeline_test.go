package pipeline

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/klotskigraph/pkg/cache"
	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/observability"
	"github.com/matzehuels/klotskigraph/pkg/packed"
)

// mapCache is an in-memory cache.Cache that counts hits.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

func TestValidateForEnumerate(t *testing.T) {
	var empty Options
	if err := empty.ValidateForEnumerate(); err == nil {
		t.Error("missing puzzle should fail")
	}

	bad := Options{Puzzle: klotski.Simple(), Policy: "shape"}
	if err := bad.ValidateForEnumerate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown policy: got %v", err)
	}

	opts := Options{Puzzle: klotski.Simple()}
	if err := opts.ValidateForEnumerate(); err != nil {
		t.Fatalf("ValidateForEnumerate: %v", err)
	}
	if opts.Policy != "geometry" {
		t.Errorf("Policy = %q, want geometry", opts.Policy)
	}
	if opts.MaxNodes != klotski.DefaultMaxNodes || opts.MaxEdges != klotski.DefaultMaxEdges {
		t.Errorf("limits = %d/%d, want defaults", opts.MaxNodes, opts.MaxEdges)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateForPack(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		wantErr bool
	}{
		{"default codec", Options{}, []string{"gzip"}, false},
		{"dedupe case-insensitive", Options{Codecs: []string{"GZIP", "gzip", "zstd"}}, []string{"gzip", "zstd"}, false},
		{"unknown codec", Options{Codecs: []string{"brotli"}}, nil, true},
		{"negative scale", Options{Scale: -1}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForPack()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(tt.opts.Codecs) != len(tt.want) {
				t.Fatalf("Codecs = %v, want %v", tt.opts.Codecs, tt.want)
			}
			for i := range tt.want {
				if tt.opts.Codecs[i] != tt.want[i] {
					t.Errorf("Codecs = %v, want %v", tt.opts.Codecs, tt.want)
				}
			}
			if tt.opts.Scale != packed.DefaultScale {
				t.Errorf("Scale = %g, want default", tt.opts.Scale)
			}
		})
	}
}

func TestExecuteSimple(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(ctx, Options{
		Puzzle: klotski.Simple(),
		Codecs: []string{"gzip", "zstd"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 6 {
		t.Errorf("counts = %d/%d, want 4/6", res.Stats.NodeCount, res.Stats.EdgeCount)
	}
	if res.GraphHash == "" {
		t.Error("GraphHash should be set")
	}
	if len(res.Artifacts.Raw) != 208 {
		t.Errorf("raw size = %d, want 208", len(res.Artifacts.Raw))
	}
	if len(res.Artifacts.Stats) != 2 {
		t.Fatalf("got %d stats, want 2", len(res.Artifacts.Stats))
	}

	for _, name := range []string{"gzip", "zstd"} {
		data := res.Artifacts.Compressed[name]
		g, c, err := packed.Open(data)
		if err != nil {
			t.Fatalf("Open %s: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("detected codec %s, want %s", c.Name(), name)
		}
		if g.Header.NodeCount != 4 || g.Header.EdgeCount != 6 {
			t.Errorf("%s header counts = %d/%d", name, g.Header.NodeCount, g.Header.EdgeCount)
		}
	}
	if res.CacheInfo.GraphHit || res.CacheInfo.ArtifactHit {
		t.Error("null cache should never hit")
	}
}

func TestEnumerateCaching(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Puzzle: klotski.Simple()}

	first, hit, err := r.EnumerateWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first run should miss")
	}

	second, hit, err := r.EnumerateWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second run should hit")
	}
	a, _ := first.Marshal()
	b, _ := second.Marshal()
	if !bytes.Equal(a, b) {
		t.Error("cached graph differs from computed graph")
	}

	// A different policy is a different key.
	_, hit, err = r.EnumerateWithCacheInfo(ctx, Options{Puzzle: klotski.Simple(), Policy: "identity"})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("identity policy should not reuse the geometry entry")
	}

	// Refresh bypasses the cache.
	_, hit, _ = r.EnumerateWithCacheInfo(ctx, Options{Puzzle: klotski.Simple(), Refresh: true})
	if hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestEnumerateDumpBypassesCache(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMapCache(), nil, nil)
	if _, err := r.Enumerate(ctx, Options{Puzzle: klotski.Simple()}); err != nil {
		t.Fatal(err)
	}

	dumps := 0
	_, hit, err := r.EnumerateWithCacheInfo(ctx, Options{
		Puzzle:    klotski.Simple(),
		DumpEvery: 1,
		Dump: func([]*klotski.State) error {
			dumps++
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("a configured dump should force a fresh search")
	}
	if dumps == 0 {
		t.Error("dump callback was never invoked")
	}
}

func TestEnumerateLimit(t *testing.T) {
	_, err := Enumerate(context.Background(), Options{Puzzle: klotski.Simple(), MaxNodes: 2})
	if !errors.Is(err, errors.ErrCodeLimitExceeded) {
		t.Errorf("got %v, want EXPLORATION_LIMIT", err)
	}
}

func TestPackCaching(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	r := NewRunner(c, nil, nil)

	doc, err := r.Enumerate(ctx, Options{Puzzle: klotski.Simple()})
	if err != nil {
		t.Fatal(err)
	}

	first, hit, err := r.PackWithCacheInfo(ctx, doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first pack should miss")
	}

	second, hit, err := r.PackWithCacheInfo(ctx, doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second pack should hit")
	}
	if !bytes.Equal(first.Raw, second.Raw) || !bytes.Equal(first.Compressed["gzip"], second.Compressed["gzip"]) {
		t.Error("cached artifacts differ")
	}
	if second.Stats[0].RawSize != 208 {
		t.Errorf("cached stats RawSize = %d, want 208", second.Stats[0].RawSize)
	}

	// A new codec or a new layout misses.
	if _, hit, _ := r.PackWithCacheInfo(ctx, doc, Options{Codecs: []string{"zstd"}}); hit {
		t.Error("zstd should not be cached yet")
	}
	layout := graph.Layout{doc.Nodes[0].ID: {1, 2, 3}}
	if _, hit, _ := r.PackWithCacheInfo(ctx, doc, Options{Layout: layout}); hit {
		t.Error("changed layout should not reuse the entry")
	}
}

type recordingPackHooks struct {
	observability.NoopPackHooks
	missing   int
	completed []string
}

func (h *recordingPackHooks) OnMissingPositions(_ context.Context, count int) { h.missing = count }

func (h *recordingPackHooks) OnPackComplete(_ context.Context, codec string, _, _ int, _ time.Duration) {
	h.completed = append(h.completed, codec)
}

func TestPackMissingPositions(t *testing.T) {
	hooks := &recordingPackHooks{}
	observability.SetPackHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := NewRunner(cache.NewNullCache(), nil, nil)
	doc, err := r.Enumerate(ctx, Options{Puzzle: klotski.Simple()})
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Pack(ctx, doc, Options{Layout: graph.Layout{doc.Nodes[0].ID: {0.5, 0, 0}}, InputSize: 4096})
	if err != nil {
		t.Fatal(err)
	}
	if hooks.missing != 3 {
		t.Errorf("OnMissingPositions count = %d, want 3", hooks.missing)
	}
	if len(hooks.completed) != 1 || hooks.completed[0] != "gzip" {
		t.Errorf("OnPackComplete codecs = %v, want [gzip]", hooks.completed)
	}
	s := out.Stats[0]
	if s.MissingPositions != 3 || s.InputSize != 4096 {
		t.Errorf("stats = %+v", s)
	}
	if s.Nodes != 4 || s.Edges != 6 || s.Pieces != 4 {
		t.Errorf("stats counts = %d/%d/%d", s.Nodes, s.Edges, s.Pieces)
	}
}
