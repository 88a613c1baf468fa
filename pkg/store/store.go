// Package store archives enumerated state-space graphs.
//
// A [Record] wraps a [graph.Graph] with the puzzle it was enumerated from.
// Two implementations of [GraphStore] exist: [MongoStore] for a shared
// MongoDB collection (the "publish" command) and [MemoryStore] for tests
// and single-process use.
//
// The classic puzzle's graph is larger than a MongoDB document may be, so
// the graph body never goes into the record document itself. MongoStore
// keeps it in GridFS and the record holds the file id.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/graph"
)

// Record is one archived graph.
type Record struct {
	ID         string      `json:"id" bson:"_id"`
	Puzzle     string      `json:"puzzle" bson:"puzzle"`
	PuzzleHash string      `json:"puzzle_hash" bson:"puzzle_hash"`
	Policy     string      `json:"policy" bson:"policy"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
	Graph      graph.Graph `json:"graph" bson:"-"`

	// GraphFile is the GridFS id of the graph body in a MongoStore.
	GraphFile primitive.ObjectID `json:"-" bson:"graph_file,omitempty"`
}

// MaxDocumentSize is MongoDB's limit on one BSON document.
const MaxDocumentSize = 16 << 20

// GraphStore persists records.
type GraphStore interface {
	// Save inserts or replaces rec. An empty ID is filled with a new UUID,
	// which is returned.
	Save(ctx context.Context, rec *Record) (string, error)

	// Load returns the record with the given id, or a NOT_FOUND error.
	Load(ctx context.Context, id string) (*Record, error)

	// Latest returns the most recent record for a puzzle hash, or a
	// NOT_FOUND error.
	Latest(ctx context.Context, puzzleHash string) (*Record, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// prepare validates rec and fills ID and CreatedAt when unset.
func prepare(rec *Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil record")
	}
	if err := rec.Graph.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return checkDocumentSize(rec)
}

// checkDocumentSize rejects records whose document would not fit in MongoDB.
// Both stores apply it so tests see the same limit as production.
func checkDocumentSize(rec *Record) error {
	data, err := bson.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode record %s", rec.ID)
	}
	if len(data) > MaxDocumentSize {
		return errors.New(errors.ErrCodeInvalidInput, "record %s is %d bytes of BSON, over the %d byte document limit",
			rec.ID, len(data), MaxDocumentSize)
	}
	return nil
}

// MemoryStore keeps records in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) (string, error) {
	if err := prepare(rec); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return rec.ID, nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph %s", id)
	}
	return &rec, nil
}

func (s *MemoryStore) Latest(ctx context.Context, puzzleHash string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Record
	for _, rec := range s.records {
		if rec.PuzzleHash == puzzleHash {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no graph for puzzle %s", puzzleHash)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return &matches[0], nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var (
	_ GraphStore = (*MemoryStore)(nil)
	_ GraphStore = (*MongoStore)(nil)
)
