package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"devspace/internal/domain"
	"devspace/internal/domain/models"
	"devspace/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// folderDocument is the stored shape of a folder. Child ids are never stored.
type folderDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	ParentID  *string   `bson:"parentId"`
	CreatedAt time.Time `bson:"createdAt"`
	Seq       int64     `bson:"seq"`
}

// MongoFolderRepository implements the FolderRepository interface
type MongoFolderRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &MongoFolderRepository{
		collection: config.Database.Collection(FoldersCollection),
		counters:   config.Database.Collection(CountersCollection),
	}
}

var creationOrder = bson.D{{Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}}

// Create creates a new folder
func (r *MongoFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	seq, err := nextSeq(ctx, r.counters, FoldersCollection)
	if err != nil {
		return domain.NewStoreError("create folder", err)
	}
	doc := folderDocument{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		CreatedAt: time.Now().UTC(),
		Seq:       seq,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return domain.NewStoreError("create folder", err)
	}
	folder.ChildIDs = []string{}
	return nil
}

// GetByID retrieves a folder by ID
func (r *MongoFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var doc folderDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
		}
		return nil, domain.NewStoreError("get folder", err)
	}

	folders, err := r.hydrate(ctx, []folderDocument{doc})
	if err != nil {
		return nil, err
	}
	return &folders[0], nil
}

// Update replaces the folder's name and parent
func (r *MongoFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	result, err := r.collection.UpdateByID(ctx, folder.ID, bson.M{"$set": bson.M{
		"name":     folder.Name,
		"parentId": folder.ParentID,
	}})
	if err != nil {
		return domain.NewStoreError("update folder", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotFound)
	}
	return nil
}

// Delete deletes a single folder record
func (r *MongoFolderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return domain.NewStoreError("delete folder", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}
	return nil
}

// ListAll retrieves every folder in creation order
func (r *MongoFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	return r.find(ctx, "list folders", bson.M{})
}

// ListChildren lists immediate child folders (nil = root level)
func (r *MongoFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	return r.find(ctx, "list child folders", bson.M{"parentId": parentID})
}

// ListChildIDs lists the ids of immediate child folders
func (r *MongoFolderRepository) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	children, err := r.childIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return children[id], nil
}

// SearchByName finds folders whose name contains query, ignoring case
func (r *MongoFolderRepository) SearchByName(ctx context.Context, query string) ([]models.Folder, error) {
	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
	return r.find(ctx, "search folders", filter)
}

func (r *MongoFolderRepository) find(ctx context.Context, op string, filter bson.M) ([]models.Folder, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	var docs []folderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	return r.hydrate(ctx, docs)
}

// hydrate converts documents to folders and fills the derived child lists
// with a single query over all of them.
func (r *MongoFolderRepository) hydrate(ctx context.Context, docs []folderDocument) ([]models.Folder, error) {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	children, err := r.childIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	folders := make([]models.Folder, len(docs))
	for i, doc := range docs {
		folders[i] = models.Folder{
			ID:       doc.ID,
			Name:     doc.Name,
			ParentID: doc.ParentID,
			ChildIDs: children[doc.ID],
		}
	}
	return folders, nil
}

// childIDs maps each parent id to its children's ids in creation order.
// Every requested parent gets a non-nil slice.
func (r *MongoFolderRepository) childIDs(ctx context.Context, parentIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(parentIDs))
	for _, id := range parentIDs {
		out[id] = []string{}
	}
	if len(parentIDs) == 0 {
		return out, nil
	}

	opts := options.Find().
		SetSort(creationOrder).
		SetProjection(bson.M{"_id": 1, "parentId": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"parentId": bson.M{"$in": parentIDs}}, opts)
	if err != nil {
		return nil, domain.NewStoreError("list child ids", err)
	}

	var docs []folderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStoreError("list child ids", err)
	}

	for _, doc := range docs {
		if doc.ParentID != nil {
			out[*doc.ParentID] = append(out[*doc.ParentID], doc.ID)
		}
	}
	return out, nil
}
