package store

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/graph"
)

// Default names used when MongoConfig leaves them empty.
const (
	DefaultDatabase   = "klotskigraph"
	DefaultCollection = "graphs"
)

// MongoConfig describes where records live.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoStore stores record metadata in a collection keyed by _id and the
// graph body as JSON in a GridFS bucket of the same name. The classic
// graph is about 18 MB of BSON, more than one document may hold.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection

	// filesMu serializes bucket calls, whose deadlines are bucket-wide.
	filesMu sync.Mutex
	files   *gridfs.Bucket
}

// NewMongoStore connects, pings the server and ensures the puzzle_hash index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout)
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "mongo uri")
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	files, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(cfg.Collection))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	s := &MongoStore{
		client: client,
		coll:   db.Collection(cfg.Collection),
		files:  files,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "puzzle_hash", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Save uploads the graph body, then upserts the record by ID. Replacing a
// record removes the body it pointed to.
func (s *MongoStore) Save(ctx context.Context, rec *Record) (string, error) {
	if err := prepare(rec); err != nil {
		return "", err
	}
	body, err := rec.Graph.Marshal()
	if err != nil {
		return "", err
	}

	var previous struct {
		GraphFile primitive.ObjectID `bson:"graph_file"`
	}
	err = s.coll.FindOne(ctx, bson.M{"_id": rec.ID}, options.FindOne().SetProjection(bson.M{"graph_file": 1})).Decode(&previous)
	if err != nil && !stderrors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("look up graph %s: %w", rec.ID, err)
	}

	fileID, err := s.upload(ctx, rec.ID+".json", body)
	if err != nil {
		return "", fmt.Errorf("upload graph %s: %w", rec.ID, err)
	}
	rec.GraphFile = fileID

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		_ = s.files.DeleteContext(ctx, fileID)
		return "", fmt.Errorf("save graph %s: %w", rec.ID, err)
	}
	if !previous.GraphFile.IsZero() && previous.GraphFile != fileID {
		if err := s.files.DeleteContext(ctx, previous.GraphFile); err != nil && !stderrors.Is(err, gridfs.ErrFileNotFound) {
			return "", fmt.Errorf("remove old body of graph %s: %w", rec.ID, err)
		}
	}
	return rec.ID, nil
}

// Load fetches a record and its graph by ID.
func (s *MongoStore) Load(ctx context.Context, id string) (*Record, error) {
	return s.findOne(ctx, bson.M{"_id": id}, nil, "graph "+id)
}

// Latest fetches the newest record for a puzzle.
func (s *MongoStore) Latest(ctx context.Context, puzzleHash string) (*Record, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.findOne(ctx, bson.M{"puzzle_hash": puzzleHash}, opts, "no graph for puzzle "+puzzleHash)
}

func (s *MongoStore) upload(ctx context.Context, name string, body []byte) (primitive.ObjectID, error) {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	deadline, _ := ctx.Deadline()
	_ = s.files.SetWriteDeadline(deadline)
	return s.files.UploadFromStream(name, bytes.NewReader(body))
}

func (s *MongoStore) download(ctx context.Context, rec *Record) error {
	if rec.GraphFile.IsZero() {
		return errors.New(errors.ErrCodeNotFound, "graph %s has no body", rec.ID)
	}
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	deadline, _ := ctx.Deadline()
	_ = s.files.SetReadDeadline(deadline)

	var buf bytes.Buffer
	if _, err := s.files.DownloadToStream(rec.GraphFile, &buf); err != nil {
		if stderrors.Is(err, gridfs.ErrFileNotFound) {
			return errors.New(errors.ErrCodeNotFound, "body of graph %s", rec.ID)
		}
		return fmt.Errorf("download graph %s: %w", rec.ID, err)
	}
	g, err := graph.UnmarshalGraph(buf.Bytes())
	if err != nil {
		return fmt.Errorf("decode graph %s: %w", rec.ID, err)
	}
	rec.Graph = g
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions, what string) (*Record, error) {
	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	var rec Record
	err := s.coll.FindOne(ctx, filter, findOpts...).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "%s", what)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", what, err)
	}
	if err := s.download(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
