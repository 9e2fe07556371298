package services

import (
	"context"

	"survivor-pool-go/models"
)

// Store interfaces consumed by the services. The Mongo repositories in the
// database package satisfy them; tests use in-memory fakes.

// GameStore provides durable access to Game records
type GameStore interface {
	FindByID(ctx context.Context, season, gameID int) (*models.Game, error)
	FindByWeek(ctx context.Context, season, week int) ([]*models.Game, error)
	FindBySeason(ctx context.Context, season int) ([]*models.Game, error)
	BulkUpsert(ctx context.Context, games []*models.Game) (int, error)
}

// PickStore provides durable access to Pick records. UpdateResult and
// Replace are conditional on a revision the caller read and return
// database.ErrStaleRevision when a concurrent writer got there first.
type PickStore interface {
	Insert(ctx context.Context, pick *models.Pick) error
	FindByUserWeek(ctx context.Context, userID, season, week int) (*models.Pick, error)
	FindByUserSeason(ctx context.Context, userID, season int) ([]*models.Pick, error)
	FindByWeek(ctx context.Context, season, week int) ([]*models.Pick, error)
	UpdateResult(ctx context.Context, pick *models.Pick, result models.PickResult, margin int, expectedRevision int64) error
	Replace(ctx context.Context, pick *models.Pick, expectedRevision int64) error
}

// OddsStore provides append-only access to OddsQuote snapshots
type OddsStore interface {
	Append(ctx context.Context, quote *models.OddsQuote) error
	LatestForGames(ctx context.Context, season int, gameIDs []int) (map[int]*models.OddsQuote, error)
}

// StandingStore provides durable access to derived Standing records
type StandingStore interface {
	Get(ctx context.Context, userID, season int) (*models.Standing, error)
	Upsert(ctx context.Context, standing *models.Standing, expectedRevision int64) error
	ListBySeason(ctx context.Context, season int) ([]*models.Standing, error)
}

// UserStore provides access to pool participants
type UserStore interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// ItemFailure reports one failed batch item; batch operations collect these
// instead of aborting
type ItemFailure struct {
	UserID int    `json:"user_id,omitempty"`
	GameID int    `json:"game_id,omitempty"`
	Reason string `json:"reason"`
}
