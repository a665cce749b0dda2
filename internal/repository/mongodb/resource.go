package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoResourceRepository implements the ResourceRepository interface
type MongoResourceRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(config *RepositoryConfig) repositories.ResourceRepository {
	return &MongoResourceRepository{
		collection: config.Database.Collection(ResourcesCollection),
		counters:   config.Database.Collection(CountersCollection),
	}
}

// resourceDocument adds the insertion sequence used to order resources that
// share a createdOn value.
type resourceDocument struct {
	models.Resource `bson:",inline"`
	Seq             int64 `bson:"seq"`
}

var (
	oldestFirst = bson.D{{Key: "createdOn", Value: 1}, {Key: "seq", Value: 1}}
	newestFirst = bson.D{{Key: "createdOn", Value: -1}, {Key: "seq", Value: -1}}
)

// Create creates a new resource
func (r *MongoResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	seq, err := nextSeq(ctx, r.counters, ResourcesCollection)
	if err != nil {
		return domain.NewStoreError("create resource", err)
	}
	if _, err := r.collection.InsertOne(ctx, resourceDocument{Resource: *res, Seq: seq}); err != nil {
		return domain.NewStoreError("create resource", err)
	}
	return nil
}

// GetByID retrieves a resource by ID
func (r *MongoResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var res models.Resource
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrResourceNotFound)
		}
		return nil, domain.NewStoreError("get resource", err)
	}
	res.CreatedOn = res.CreatedOn.UTC()
	return &res, nil
}

// Update overwrites every mutable field. createdOn and seq are kept.
func (r *MongoResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": res.ID}, bson.M{"$set": bson.M{
		"folderId":     res.FolderID,
		"name":         res.Name,
		"description":  res.Description,
		"kind":         res.Kind,
		"codeLanguage": res.CodeLanguage,
		"value":        res.Value,
		"favorite":     res.Favorite,
	}})
	if err != nil {
		return domain.NewStoreError("update resource", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("resource %s: %w", res.ID, domain.ErrResourceNotFound)
	}
	return nil
}

// Delete deletes a resource. Deleting a missing id is not an error.
func (r *MongoResourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return domain.NewStoreError("delete resource", err)
	}
	return nil
}

// DeleteByFolder deletes every resource attached to folderID (nil = root level)
func (r *MongoResourceRepository) DeleteByFolder(ctx context.Context, folderID *string) (int, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"folderId": folderID})
	if err != nil {
		return 0, domain.NewStoreError("delete resources by folder", err)
	}
	return int(result.DeletedCount), nil
}

// ListAll retrieves every resource in creation order
func (r *MongoResourceRepository) ListAll(ctx context.Context) ([]models.Resource, error) {
	return r.find(ctx, "list resources", bson.M{}, options.Find().SetSort(oldestFirst))
}

// ListByFolder lists resources attached to folderID (nil = root level)
func (r *MongoResourceRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.Resource, error) {
	return r.find(ctx, "list resources by folder", bson.M{"folderId": folderID}, options.Find().SetSort(oldestFirst))
}

// ListFavorites lists resources flagged as favorite
func (r *MongoResourceRepository) ListFavorites(ctx context.Context) ([]models.Resource, error) {
	return r.find(ctx, "list favorite resources", bson.M{"favorite": true}, options.Find().SetSort(oldestFirst))
}

// SearchByName finds resources whose name contains query, ignoring case
func (r *MongoResourceRepository) SearchByName(ctx context.Context, query string) ([]models.Resource, error) {
	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
	return r.find(ctx, "search resources", filter, options.Find().SetSort(oldestFirst))
}

// ListRecent lists the most recently created resources, newest first
func (r *MongoResourceRepository) ListRecent(ctx context.Context, limit int) ([]models.Resource, error) {
	return r.find(ctx, "list recent resources", bson.M{}, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}

func (r *MongoResourceRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]models.Resource, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	resources := make([]models.Resource, 0)
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	for i := range resources {
		resources[i].CreatedOn = resources[i].CreatedOn.UTC()
	}
	return resources, nil
}
