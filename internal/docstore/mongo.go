package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string

	// ConnectTimeout bounds server selection and the initial ping.
	ConnectTimeout time.Duration
}

// DefaultMongoConfig returns connection settings for a local MongoDB.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "tutorbot",
		ConnectTimeout: 5 * time.Second,
	}
}

// Mongo implements Store backed by MongoDB.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to MongoDB and verifies the connection with a ping.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &ErrUnavailable{Err: fmt.Errorf("connect: %w", err)}
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &ErrUnavailable{Err: fmt.Errorf("ping: %w", err)}
	}

	return &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

func (s *Mongo) Get(ctx context.Context, collection, key string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &ErrNotFound{Collection: collection, Key: key}
	}
	if err != nil {
		return &ErrUnavailable{Err: err}
	}
	return nil
}

func (s *Mongo) Put(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("unmarshal document: %w", err)
	}

	key, _ := m["_id"].(string)
	if key == "" {
		key = uuid.NewString()
		m["_id"] = key
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", &ErrConflict{Collection: collection, Key: key}
		}
		return "", &ErrUnavailable{Err: err}
	}
	return key, nil
}

func (s *Mongo) Query(ctx context.Context, collection string, filter map[string]any, opts QueryOpts, out any) error {
	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}

	findOpts := options.Find()
	if opts.SortBy != "" {
		dir := 1
		if opts.Desc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.SortBy, Value: dir}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, f, findOpts)
	if err != nil {
		return &ErrUnavailable{Err: err}
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, out); err != nil {
		return &ErrUnavailable{Err: err}
	}
	return nil
}

func (s *Mongo) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	res, err := s.db.Collection(collection).UpdateByID(ctx, key, bson.M{"$set": set})
	if err != nil {
		return &ErrUnavailable{Err: err}
	}
	if res.MatchedCount == 0 {
		return &ErrNotFound{Collection: collection, Key: key}
	}
	return nil
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
