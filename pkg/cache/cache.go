// Package cache provides key-value caching for enumerated graphs and packed
// artifacts.
//
// Enumerating the classic puzzle takes seconds; re-running the CLI with the
// same puzzle and limits should not. Three backends share the [Cache]
// interface:
//
//   - [FileCache]: JSON envelopes under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for the artifact server
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are built by a [Keyer] from content hashes and the options that
// influence the result, so a changed ceiling or codec never returns a stale
// entry.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLGraph    = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// NullCache misses on every Get and discards every Set.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
