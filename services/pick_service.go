package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"survivor-pool-go/database"
	"survivor-pool-go/logging"
	"survivor-pool-go/models"
)

// PickService handles participant pick submissions: lock enforcement and
// the team-reuse constraint live here
type PickService struct {
	picks  PickStore
	games  GameStore
	users  UserStore
	lock   models.LockPolicy
	logger *logging.Logger
}

// NewPickService creates a new pick service
func NewPickService(picks PickStore, games GameStore, users UserStore) *PickService {
	return &PickService{
		picks:  picks,
		games:  games,
		users:  users,
		logger: logging.WithPrefix("PickService"),
	}
}

// CreateOrUpdatePick records a participant's selection for a week. A new
// pick or a change is allowed only while both the target game and, for a
// change, the currently picked game are still open.
func (s *PickService) CreateOrUpdatePick(ctx context.Context, userID, season, week, gameID int, team string, now time.Time) (*models.Pick, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load user %d", userID), err)
	}
	if user == nil {
		return nil, models.ValidationError("user %d not found", userID)
	}

	game, err := s.games.FindByID(ctx, season, gameID)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load game %d", gameID), err)
	}
	if game == nil {
		return nil, models.ValidationError("game %d not found", gameID)
	}
	if game.Week != week {
		return nil, models.ValidationError("game %d belongs to week %d, not week %d", gameID, game.Week, week)
	}
	if !game.HasTeam(team) {
		return nil, models.ValidationError("team %s does not play in %s", team, game.Matchup())
	}
	if !s.lock.IsOpen(game, now) {
		return nil, models.StateError("game %s is locked", game.Matchup())
	}

	// Team-reuse constraint: one team per season, across all weeks
	history, err := s.picks.FindByUserSeason(ctx, userID, season)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load pick history for user %d", userID), err)
	}
	var existing *models.Pick
	for _, p := range history {
		if p.Week == week {
			existing = p
			continue
		}
		if p.Team == team {
			return nil, models.StateError("team %s already used in week %d", team, p.Week)
		}
	}

	if existing == nil {
		pick := models.NewPick(userID, season, week, gameID, team, false)
		if err := s.picks.Insert(ctx, pick); err != nil {
			if errors.Is(err, database.ErrStaleRevision) {
				return nil, models.StateError("a pick for week %d already exists", week)
			}
			return nil, models.PersistenceError("insert pick", err)
		}
		s.logger.Infof("User %d picked %s (%s) for week %d", userID, team, game.Matchup(), week)
		return pick, nil
	}

	// Changing an existing pick also requires the currently picked game to
	// still be open; a locked pick is immutable even toward an open game
	currentGame, err := s.games.FindByID(ctx, season, existing.GameID)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load game %d", existing.GameID), err)
	}
	if currentGame != nil && !s.lock.IsOpen(currentGame, now) {
		return nil, models.StateError("existing pick on %s is locked", currentGame.Matchup())
	}

	replacement := *existing
	replacement.GameID = gameID
	replacement.Team = team
	replacement.AutoPick = false
	if err := s.picks.Replace(ctx, &replacement, existing.Revision); err != nil {
		if errors.Is(err, database.ErrStaleRevision) {
			return nil, models.StateError("pick for week %d changed concurrently, retry", week)
		}
		return nil, models.PersistenceError("replace pick", err)
	}

	s.logger.Infof("User %d changed week %d pick to %s (%s)", userID, week, team, game.Matchup())
	return &replacement, nil
}
