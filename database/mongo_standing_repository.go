package database

import (
	"context"
	"fmt"
	"time"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStandingRepository stores one Standing per (user, season). Writes are
// full replacements guarded by a revision check: standings are derived state
// and always rebuilt, never patched.
type MongoStandingRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoStandingRepository(db *MongoDB) *MongoStandingRepository {
	collection := db.Collection("standings")
	logger := logging.WithPrefix("mongo_standing_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "season", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on standings collection: %v", err)
	}

	return &MongoStandingRepository{
		collection: collection,
		logger:     logger,
	}
}

// Get returns a user's standing, or nil when none has been computed yet
func (r *MongoStandingRepository) Get(ctx context.Context, userID, season int) (*models.Standing, error) {
	filter := bson.M{"user_id": userID, "season": season}

	var standing models.Standing
	err := r.collection.FindOne(ctx, filter).Decode(&standing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find standing for user %d: %w", userID, err)
	}
	return &standing, nil
}

// Upsert replaces a user's standing conditional on the revision the caller
// read. A concurrent recomputation that already bumped the revision makes
// the filter miss; the resulting upsert insert then collides with the unique
// index, which surfaces as ErrStaleRevision.
func (r *MongoStandingRepository) Upsert(ctx context.Context, standing *models.Standing, expectedRevision int64) error {
	standing.Revision = expectedRevision + 1
	standing.UpdatedAt = time.Now()

	filter := bson.M{
		"user_id":  standing.UserID,
		"season":   standing.Season,
		"revision": expectedRevision,
	}
	opts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, filter, standing, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrStaleRevision
		}
		return fmt.Errorf("failed to upsert standing for user %d: %w", standing.UserID, err)
	}
	return nil
}

// ListBySeason returns every standing for a season
func (r *MongoStandingRepository) ListBySeason(ctx context.Context, season int) ([]*models.Standing, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"season": season})
	if err != nil {
		return nil, fmt.Errorf("failed to find standings for season %d: %w", season, err)
	}
	defer cursor.Close(ctx)

	var standings []*models.Standing
	if err := cursor.All(ctx, &standings); err != nil {
		return nil, fmt.Errorf("failed to decode standings: %w", err)
	}
	return standings, nil
}
