package mongo

import (
	"context"
	"errors"
	"time"

	"contentflow/internal/domain"
	"contentflow/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultAnalyticsCollection = "user_analytics"

// mongoAnalyticsRepository implements repository.AnalyticsRepository
type mongoAnalyticsRepository struct {
	collection *mongo.Collection
}

// NewMongoAnalyticsRepository creates a user analytics repository backed by
// MongoDB. An empty collection name selects the default.
func NewMongoAnalyticsRepository(db *mongo.Database, collectionName string) repository.AnalyticsRepository {
	if collectionName == "" {
		collectionName = defaultAnalyticsCollection
	}
	return &mongoAnalyticsRepository{
		collection: db.Collection(collectionName),
	}
}

// Get retrieves the analytics record for a user.
func (r *mongoAnalyticsRepository) Get(ctx context.Context, userID string) (*domain.UserAnalytics, error) {
	var analytics domain.UserAnalytics
	filter := bson.M{"_id": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&analytics)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &analytics, nil
}

// RecordUpload bumps the user's upload counter and last-upload timestamp in
// one server-side upsert. $inc on an absent field starts from zero, so the
// first upload creates the record with upload_count 1; concurrent calls for
// the same user serialize on the document and never lose an increment.
func (r *mongoAnalyticsRepository) RecordUpload(ctx context.Context, userID string, at time.Time) error {
	if userID == "" {
		return errors.New("userID is required")
	}

	filter := bson.M{"_id": userID}
	update := bson.M{
		"$inc": bson.M{"upload_count": 1},
		"$set": bson.M{"last_upload": at.UTC()},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
