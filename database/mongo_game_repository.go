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

// MongoGameRepository stores Game records keyed by (id, season)
type MongoGameRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	collection := db.Collection("games")
	logger := logging.WithPrefix("mongo_game_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}, {Key: "season", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on games collection: %v", err)
	}

	return &MongoGameRepository{
		collection: collection,
		logger:     logger,
	}
}

// FindByID gets a game by its feed id within a season; returns nil when absent
func (r *MongoGameRepository) FindByID(ctx context.Context, season, gameID int) (*models.Game, error) {
	filter := bson.M{"id": gameID, "season": season}

	var game models.Game
	err := r.collection.FindOne(ctx, filter).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find game %d: %w", gameID, err)
	}
	return &game, nil
}

// FindByWeek retrieves all games for a season/week sorted by start time,
// then home team, giving a stable schedule order
func (r *MongoGameRepository) FindByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	filter := bson.M{"season": season, "week": week}
	sortOptions := options.Find().SetSort(bson.D{
		{Key: "start", Value: 1},
		{Key: "home", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, sortOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find games for week %d season %d: %w", week, season, err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// FindBySeason retrieves all games for a season
func (r *MongoGameRepository) FindBySeason(ctx context.Context, season int) ([]*models.Game, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"season": season})
	if err != nil {
		return nil, fmt.Errorf("failed to find games for season %d: %w", season, err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// BulkUpsert writes games keyed by (id, season) and returns the number of
// documents inserted or modified
func (r *MongoGameRepository) BulkUpsert(ctx context.Context, games []*models.Game) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	var operations []mongo.WriteModel
	for _, game := range games {
		filter := bson.M{"id": game.ID, "season": game.Season}
		update := bson.M{"$set": bson.M{
			"id":        game.ID,
			"season":    game.Season,
			"week":      game.Week,
			"start":     game.Start,
			"away":      game.Away,
			"home":      game.Home,
			"state":     game.State,
			"awayScore": game.AwayScore,
			"homeScore": game.HomeScore,
			"quarter":   game.Quarter,
		}}

		operations = append(operations, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	result, err := r.collection.BulkWrite(ctx, operations, opts)
	if err != nil {
		return 0, fmt.Errorf("bulk upsert failed: %w", err)
	}

	updated := int(result.UpsertedCount + result.ModifiedCount)
	r.logger.Debugf("Processed %d games: %d upserted, %d modified",
		len(games), result.UpsertedCount, result.ModifiedCount)
	return updated, nil
}
