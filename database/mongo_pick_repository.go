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

// MongoPickRepository stores Pick records with a unique (user, season, week)
// key and revision-checked updates so concurrent settlement passes cannot
// lose writes
type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.Collection("picks")
	logger := logging.WithPrefix("mongo_pick_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "season", Value: 1},
			{Key: "week", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on picks collection: %v", err)
	}

	return &MongoPickRepository{
		collection: collection,
		logger:     logger,
	}
}

// Insert stores a new pick; the unique index rejects a second pick for the
// same (user, season, week)
func (r *MongoPickRepository) Insert(ctx context.Context, pick *models.Pick) error {
	pick.Revision = 1
	result, err := r.collection.InsertOne(ctx, pick)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrStaleRevision
		}
		return fmt.Errorf("failed to insert pick: %w", err)
	}
	if oid, ok := result.InsertedID.(interface{ Hex() string }); ok {
		r.logger.Debugf("Inserted pick %s for user %d week %d", oid.Hex(), pick.UserID, pick.Week)
	}
	return nil
}

// FindByUserWeek returns the user's pick for a week, or nil when absent
func (r *MongoPickRepository) FindByUserWeek(ctx context.Context, userID, season, week int) (*models.Pick, error) {
	filter := bson.M{"user_id": userID, "season": season, "week": week}

	var pick models.Pick
	err := r.collection.FindOne(ctx, filter).Decode(&pick)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pick: %w", err)
	}
	return &pick, nil
}

// FindByUserSeason returns the user's full pick history for a season in
// week order
func (r *MongoPickRepository) FindByUserSeason(ctx context.Context, userID, season int) ([]*models.Pick, error) {
	filter := bson.M{"user_id": userID, "season": season}
	opts := options.Find().SetSort(bson.D{{Key: "week", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks for user %d: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}
	return picks, nil
}

// FindByWeek returns every pick for a season/week
func (r *MongoPickRepository) FindByWeek(ctx context.Context, season, week int) ([]*models.Pick, error) {
	filter := bson.M{"season": season, "week": week}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks for week %d: %w", week, err)
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}
	return picks, nil
}

// UpdateResult writes result and margin for a pick, conditional on the
// caller's revision. ErrStaleRevision means a concurrent pass won the write.
func (r *MongoPickRepository) UpdateResult(ctx context.Context, pick *models.Pick, result models.PickResult, margin int, expectedRevision int64) error {
	filter := bson.M{"_id": pick.ID, "revision": expectedRevision}
	update := bson.M{
		"$set": bson.M{
			"result":     result,
			"margin":     margin,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"revision": 1},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update pick result: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleRevision
	}
	return nil
}

// Replace overwrites a pick's selection (game, team, auto flag) conditional
// on the caller's revision; result and margin reset to pending
func (r *MongoPickRepository) Replace(ctx context.Context, pick *models.Pick, expectedRevision int64) error {
	filter := bson.M{"_id": pick.ID, "revision": expectedRevision}
	update := bson.M{
		"$set": bson.M{
			"game_id":    pick.GameID,
			"team":       pick.Team,
			"auto_pick":  pick.AutoPick,
			"result":     models.PickResultPending,
			"margin":     nil,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"revision": 1},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to replace pick: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleRevision
	}
	return nil
}
