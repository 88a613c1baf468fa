package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Key prefixes, also used as the keyType of cache hooks.
const (
	KeyTypeGraph    = "graph"
	KeyTypeArtifact = "artifact"
)

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey identifies an enumerated graph by the puzzle hash and the
	// options that change the search result.
	GraphKey(puzzleHash string, opts GraphKeyOpts) string

	// ArtifactKey identifies a packed artifact by the hash of its source
	// graph and the encoding options.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the exploration options that affect the graph.
type GraphKeyOpts struct {
	Policy   string `json:"policy"`
	MaxNodes int    `json:"max_nodes"`
	MaxEdges int    `json:"max_edges"`
}

// ArtifactKeyOpts are the packing options that affect the artifact bytes.
type ArtifactKeyOpts struct {
	Codec         string  `json:"codec"`
	Scale         float64 `json:"scale"`
	PositionsHash string  `json:"positions_hash,omitempty"`
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey returns "graph:<sha256>".
func (DefaultKeyer) GraphKey(puzzleHash string, opts GraphKeyOpts) string {
	return digestKey(KeyTypeGraph, puzzleHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return digestKey(KeyTypeArtifact, graphHash, opts)
}

func digestKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Graph documents and position files
// are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// KeyType returns the kind of a key built by DefaultKeyer, looking past any
// scope prefix.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeGraph, KeyTypeArtifact} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "unknown"
}

// ScopedKeyer prefixes every key of another Keyer. The server scopes its
// entries per puzzle so a shared Redis never hands them to CLI runs.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) GraphKey(puzzleHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(puzzleHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
