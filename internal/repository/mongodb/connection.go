// Package mongodb stores folders and resources in MongoDB, using the
// "Folders" and "Resources" collections.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	FoldersCollection   = "Folders"
	ResourcesCollection = "Resources"
	// CountersCollection holds one {_id, seq} document per sequence
	CountersCollection = "Counters"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Client   *mongo.Client
	Database *mongo.Database
	Logger   *slog.Logger
}

// Connect opens a client and verifies the primary is reachable
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, client.Database(database), nil
}

// EnsureIndexes creates the collections' secondary indexes. Safe to call on every start.
func EnsureIndexes(ctx context.Context, config *RepositoryConfig) error {
	folderIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := config.Database.Collection(FoldersCollection).Indexes().CreateMany(ctx, folderIndexes); err != nil {
		return fmt.Errorf("create folder indexes: %w", err)
	}

	resourceIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "folderId", Value: 1}}},
		{Keys: bson.D{{Key: "favorite", Value: 1}}},
		{Keys: bson.D{{Key: "createdOn", Value: -1}, {Key: "seq", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := config.Database.Collection(ResourcesCollection).Indexes().CreateMany(ctx, resourceIndexes); err != nil {
		return fmt.Errorf("create resource indexes: %w", err)
	}

	config.Logger.Info("mongodb indexes ready", "database", config.Database.Name())
	return nil
}

// ClearData removes every folder and resource
func ClearData(ctx context.Context, config *RepositoryConfig) error {
	for _, name := range []string{ResourcesCollection, FoldersCollection} {
		if _, err := config.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}

// nextSeq atomically increments the named counter and returns its new value.
// Documents sharing a timestamp are ordered by it.
func nextSeq(ctx context.Context, counters *mongo.Collection, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s seq: %w", name, err)
	}
	return counter.Seq, nil
}
