// Package observability lets callers watch the explorer, the cache and the
// packer without those packages depending on a metrics backend.
//
// Each event category has a hooks interface with a no-op default. A program
// installs its own implementation before work starts, and the instrumented
// code fetches the current one at each call site:
//
//	observability.SetExploreHooks(progressBar{})
//	defer observability.SetExploreHooks(observability.NoopExploreHooks{})
//
//	observability.Explore().OnProgress(ctx, expanded, queued, discovered)
//
// Embedding a Noop type lets an implementation override only the events it
// cares about.
package observability

import (
	"context"
	"sync"
	"time"
)

// ExploreHooks receives events from the state-space explorer.
type ExploreHooks interface {
	// OnExploreStart is called once before the first state is expanded.
	OnExploreStart(ctx context.Context, pieceCount int)

	// OnProgress is called periodically with the running counters.
	OnProgress(ctx context.Context, expanded, frontier, discovered int)

	// OnExploreComplete is called when the search ends, successfully or not.
	OnExploreComplete(ctx context.Context, nodes, edges int, duration time.Duration, err error)
}

// CacheHooks receives lookups and writes made by the pipeline runner.
// keyType is "graph" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet reports a write of size bytes.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// PackHooks receives events from the binary packer.
type PackHooks interface {
	// OnPackComplete records the raw and compressed artifact sizes.
	OnPackComplete(ctx context.Context, codec string, rawSize, compressedSize int, duration time.Duration)

	// OnMissingPositions records nodes that had no entry in the position table.
	OnMissingPositions(ctx context.Context, count int)
}

// NoopExploreHooks ignores every explore event.
type NoopExploreHooks struct{}

func (NoopExploreHooks) OnExploreStart(context.Context, int)                               {}
func (NoopExploreHooks) OnProgress(context.Context, int, int, int)                         {}
func (NoopExploreHooks) OnExploreComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopPackHooks ignores every pack event.
type NoopPackHooks struct{}

func (NoopPackHooks) OnPackComplete(context.Context, string, int, int, time.Duration) {}
func (NoopPackHooks) OnMissingPositions(context.Context, int)                         {}

var (
	exploreHooks ExploreHooks = NoopExploreHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	packHooks    PackHooks    = NoopPackHooks{}
	hooksMu      sync.RWMutex
)

// SetExploreHooks installs h. A nil h is ignored.
func SetExploreHooks(h ExploreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exploreHooks = h
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetPackHooks installs h. A nil h is ignored.
func SetPackHooks(h PackHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		packHooks = h
	}
}

// Explore returns the registered explore hooks.
func Explore() ExploreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exploreHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Pack returns the registered pack hooks.
func Pack() PackHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return packHooks
}

// Reset reinstalls the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exploreHooks = NoopExploreHooks{}
	cacheHooks = NoopCacheHooks{}
	packHooks = NoopPackHooks{}
}
