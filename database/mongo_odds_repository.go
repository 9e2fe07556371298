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

// MongoOddsRepository stores append-only OddsQuote snapshots
type MongoOddsRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoOddsRepository(db *MongoDB) *MongoOddsRepository {
	collection := db.Collection("odds_quotes")
	logger := logging.WithPrefix("mongo_odds_repo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "game_id", Value: 1},
			{Key: "fetched_at", Value: -1},
		},
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on odds_quotes collection: %v", err)
	}

	return &MongoOddsRepository{
		collection: collection,
		logger:     logger,
	}
}

// Append stores a new quote snapshot; quotes are never updated in place
func (r *MongoOddsRepository) Append(ctx context.Context, quote *models.OddsQuote) error {
	if _, err := r.collection.InsertOne(ctx, quote); err != nil {
		return fmt.Errorf("failed to append odds quote for game %d: %w", quote.GameID, err)
	}
	return nil
}

// LatestForGames returns the quote with the greatest fetch timestamp for
// each of the given games. Games without any quote are absent from the map.
func (r *MongoOddsRepository) LatestForGames(ctx context.Context, season int, gameIDs []int) (map[int]*models.OddsQuote, error) {
	latest := make(map[int]*models.OddsQuote)
	if len(gameIDs) == 0 {
		return latest, nil
	}

	filter := bson.M{"season": season, "game_id": bson.M{"$in": gameIDs}}
	opts := options.Find().SetSort(bson.D{{Key: "fetched_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find odds quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []*models.OddsQuote
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode odds quotes: %w", err)
	}

	// Sorted newest first, so the first quote seen per game wins
	for _, quote := range quotes {
		if _, exists := latest[quote.GameID]; !exists {
			latest[quote.GameID] = quote
		}
	}
	return latest, nil
}
