package mongo

import (
	"context"
	"errors"

	"contentflow/internal/domain"
	"contentflow/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultContentCollection = "content_metadata"

// mongoContentRepository implements repository.ContentRepository
type mongoContentRepository struct {
	collection *mongo.Collection
}

// NewMongoContentRepository creates a content metadata repository backed by
// MongoDB. An empty collection name selects the default.
func NewMongoContentRepository(db *mongo.Database, collectionName string) repository.ContentRepository {
	if collectionName == "" {
		collectionName = defaultContentCollection
	}
	return &mongoContentRepository{
		collection: db.Collection(collectionName),
	}
}

// Create inserts a new content metadata record.
func (r *mongoContentRepository) Create(ctx context.Context, content *domain.ContentMetadata) error {
	if content.ContentID == "" || content.UserID == "" {
		return errors.New("content record requires contentID and userID")
	}

	_, err := r.collection.InsertOne(ctx, content)
	if err != nil {
		// A write conflict on the unique source index means another
		// delivery of the same notification won the insert race.
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateSource
		}
		return err
	}
	return nil
}

// ExistsBySource reports whether a record for the given source object exists.
func (r *mongoContentRepository) ExistsBySource(ctx context.Context, bucket, key string) (bool, error) {
	filter := bson.M{"original_bucket": bucket, "original_key": key}

	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByUserID retrieves all content records owned by a user.
func (r *mongoContentRepository) GetByUserID(ctx context.Context, userID string) ([]domain.ContentMetadata, error) {
	filter := bson.M{"user_id": userID}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ContentMetadata
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ScanRecent retrieves the most recent records across all users, bounded by
// limit.
func (r *mongoContentRepository) ScanRecent(ctx context.Context, limit int) ([]domain.ContentMetadata, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ContentMetadata
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureContentIndexes creates the indexes backing the duplicate-source
// check, the per-user partition query, and the recency scan.
func EnsureContentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One record per source object; closes the redelivery race.
			Keys:    bson.D{{Key: "original_bucket", Value: 1}, {Key: "original_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Secondary index for per-user partition queries.
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
