package services

import (
	"context"
	"errors"
	"fmt"

	"survivor-pool-go/database"
	"survivor-pool-go/logging"
	"survivor-pool-go/models"
)

// recomputeAttempts bounds the optimistic-write retry loop
const recomputeAttempts = 3

// StandingsService rebuilds participant standings from pick history.
// Every recomputation is total: it never applies deltas against a previous
// standing, so repeated or concurrent settlement runs converge on the same
// values and a corrected score can restore an eliminated participant.
type StandingsService struct {
	picks     PickStore
	standings StandingStore
	logger    *logging.Logger
}

// NewStandingsService creates a new standings service
func NewStandingsService(picks PickStore, standings StandingStore) *StandingsService {
	return &StandingsService{
		picks:     picks,
		standings: standings,
		logger:    logging.WithPrefix("StandingsService"),
	}
}

// Recompute rebuilds one participant's standing from their full season pick
// history. The conditional write retries on revision conflicts; each retry
// re-reads picks so the loser of a race still writes consistent values.
func (s *StandingsService) Recompute(ctx context.Context, season, userID int) (*models.Standing, error) {
	var lastErr error
	for attempt := 0; attempt < recomputeAttempts; attempt++ {
		picks, err := s.picks.FindByUserSeason(ctx, userID, season)
		if err != nil {
			return nil, models.PersistenceError(fmt.Sprintf("load picks for user %d", userID), err)
		}

		var expected int64
		current, err := s.standings.Get(ctx, userID, season)
		if err != nil {
			return nil, models.PersistenceError(fmt.Sprintf("load standing for user %d", userID), err)
		}
		if current != nil {
			expected = current.Revision
		}

		standing := models.BuildStanding(userID, season, picks)
		if err := s.standings.Upsert(ctx, standing, expected); err != nil {
			if errors.Is(err, database.ErrStaleRevision) {
				s.logger.Debugf("Standing revision conflict for user %d, retrying", userID)
				lastErr = err
				continue
			}
			return nil, models.PersistenceError(fmt.Sprintf("write standing for user %d", userID), err)
		}

		s.logger.Debugf("Recomputed standing for user %d: %d-%d-%d, margin %d, lives %d",
			userID, standing.Wins, standing.Losses, standing.Pushes, standing.MarginSum, standing.Lives)
		return standing, nil
	}
	return nil, models.PersistenceError(fmt.Sprintf("standing for user %d kept conflicting", userID), lastErr)
}

// Rankings returns the season standings in tie-break order: alive before
// eliminated, then lives, then cumulative margin
func (s *StandingsService) Rankings(ctx context.Context, season int) ([]*models.Standing, error) {
	standings, err := s.standings.ListBySeason(ctx, season)
	if err != nil {
		return nil, models.PersistenceError("load season standings", err)
	}
	models.SortStandings(standings)
	return standings, nil
}
