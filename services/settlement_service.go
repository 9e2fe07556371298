package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"survivor-pool-go/database"
	"survivor-pool-go/logging"
	"survivor-pool-go/models"

	"golang.org/x/sync/errgroup"
)

// SettlementResult reports the outcome of one settlement pass
type SettlementResult struct {
	Updated  int           `json:"updated"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// SettlementService evaluates finished games against submitted picks and
// triggers standings recomputation. SettleWeek is idempotent: re-running
// against unchanged game data rewrites nothing, and re-running after a score
// correction converges on the corrected results.
type SettlementService struct {
	picks     PickStore
	games     GameStore
	standings *StandingsService
	workers   int
	logger    *logging.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(picks PickStore, games GameStore, standings *StandingsService, workers int) *SettlementService {
	if workers < 1 {
		workers = 1
	}
	return &SettlementService{
		picks:     picks,
		games:     games,
		standings: standings,
		workers:   workers,
		logger:    logging.WithPrefix("SettlementService"),
	}
}

// SettleWeek evaluates every pick of the week whose game is final, writes
// result and margin, and recomputes standings for the affected participants.
// Per-item failures are collected, never thrown: one bad pick must not stop
// the rest of the batch.
func (s *SettlementService) SettleWeek(ctx context.Context, season, week int) (*SettlementResult, error) {
	games, err := s.games.FindByWeek(ctx, season, week)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load games for week %d", week), err)
	}
	picks, err := s.picks.FindByWeek(ctx, season, week)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load picks for week %d", week), err)
	}

	gamesByID := make(map[int]*models.Game, len(games))
	for _, game := range games {
		gamesByID[game.ID] = game
	}

	s.logger.Infof("Settling week %d season %d: %d games, %d picks", week, season, len(games), len(picks))

	var mu sync.Mutex
	result := &SettlementResult{}
	affected := make(map[int]bool)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for _, pick := range picks {
		pick := pick
		group.Go(func() error {
			game := gamesByID[pick.GameID]
			if game == nil {
				mu.Lock()
				result.Failures = append(result.Failures, ItemFailure{
					UserID: pick.UserID,
					GameID: pick.GameID,
					Reason: "referenced game not found",
				})
				mu.Unlock()
				return nil
			}
			if !game.IsFinal() {
				// Stays pending until the feed reports a final score
				return nil
			}

			updated, failure := s.settlePick(gctx, pick, game)
			mu.Lock()
			if failure != nil {
				result.Failures = append(result.Failures, *failure)
			} else {
				affected[pick.UserID] = true
				if updated {
					result.Updated++
				}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}

	// Recompute standings for every participant with an evaluated pick this
	// pass. Recomputation is total, so including unchanged participants is
	// harmless.
	userIDs := make([]int, 0, len(affected))
	for userID := range affected {
		userIDs = append(userIDs, userID)
	}
	sort.Ints(userIDs)

	group, gctx = errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for _, userID := range userIDs {
		userID := userID
		group.Go(func() error {
			if _, err := s.standings.Recompute(gctx, season, userID); err != nil {
				s.logger.Errorf("Failed to recompute standing for user %d: %v", userID, err)
				mu.Lock()
				result.Failures = append(result.Failures, ItemFailure{
					UserID: userID,
					Reason: fmt.Sprintf("standings recompute: %v", err),
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}

	s.logger.Infof("Settled week %d: %d picks updated, %d failures, %d standings recomputed",
		week, result.Updated, len(result.Failures), len(userIDs))
	return result, nil
}

// settlePick evaluates one pick against its final game. Returns whether a
// write happened and a failure to report, if any.
func (s *SettlementService) settlePick(ctx context.Context, pick *models.Pick, game *models.Game) (bool, *ItemFailure) {
	mine, other, ok := game.ScoreFor(pick.Team)
	if !ok {
		return false, &ItemFailure{
			UserID: pick.UserID,
			GameID: game.ID,
			Reason: fmt.Sprintf("team %s not scorable in %s", pick.Team, game.Matchup()),
		}
	}

	var outcome models.PickResult
	switch {
	case mine > other:
		outcome = models.PickResultWin
	case mine < other:
		outcome = models.PickResultLoss
	default:
		outcome = models.PickResultPush
	}
	margin := mine - other

	if pick.Result == outcome && pick.Margin != nil && *pick.Margin == margin {
		// Already settled with identical values; skip the write
		return false, nil
	}

	if err := s.picks.UpdateResult(ctx, pick, outcome, margin, pick.Revision); err != nil {
		if errors.Is(err, database.ErrStaleRevision) {
			return false, &ItemFailure{
				UserID: pick.UserID,
				GameID: game.ID,
				Reason: "pick revision conflict, will settle on next pass",
			}
		}
		return false, &ItemFailure{
			UserID: pick.UserID,
			GameID: game.ID,
			Reason: fmt.Sprintf("write result: %v", err),
		}
	}

	s.logger.Debugf("Settled pick: user %d took %s in %s, %s by %d",
		pick.UserID, pick.Team, game.Matchup(), outcome, margin)
	return true, nil
}
