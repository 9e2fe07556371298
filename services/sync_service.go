package services

import (
	"context"
	"fmt"
	"sync"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"

	"golang.org/x/sync/errgroup"
)

// SyncResult reports one feed reconciliation pass
type SyncResult struct {
	Updated     int           `json:"updated"`
	QuotesAdded int           `json:"quotes_added"`
	Source      string        `json:"source"`
	Failures    []ItemFailure `json:"failures,omitempty"`
}

// SyncService reconciles upstream Game and OddsQuote state into the store.
// Only changed games are written, so a sync pass against unchanged upstream
// data is a no-op apart from appended odds quotes.
type SyncService struct {
	feed    GameFeed
	games   GameStore
	odds    OddsStore
	workers int
	logger  *logging.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(feed GameFeed, games GameStore, odds OddsStore, workers int) *SyncService {
	if workers < 1 {
		workers = 1
	}
	return &SyncService{
		feed:    feed,
		games:   games,
		odds:    odds,
		workers: workers,
		logger:  logging.WithPrefix("SyncService"),
	}
}

// SyncWeek pulls the latest schedule/score state for a week and appends a
// fresh odds quote for every game still awaiting kickoff. With force set,
// every game is rewritten even when nothing changed.
func (s *SyncService) SyncWeek(ctx context.Context, season, week int, force bool) (*SyncResult, error) {
	fetched, source, err := s.feed.GamesForWeek(ctx, season, week)
	if err != nil {
		return nil, err
	}

	existing, err := s.games.FindByWeek(ctx, season, week)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load games for week %d", week), err)
	}
	existingByID := make(map[int]*models.Game, len(existing))
	for _, game := range existing {
		existingByID[game.ID] = game
	}

	var toWrite []*models.Game
	for i := range fetched {
		game := &fetched[i]
		if force || gameChanged(existingByID[game.ID], game) {
			toWrite = append(toWrite, game)
		}
	}

	result := &SyncResult{Source: source}
	if len(toWrite) > 0 {
		updated, err := s.games.BulkUpsert(ctx, toWrite)
		if err != nil {
			return nil, models.PersistenceError("write games", err)
		}
		result.Updated = updated
	}

	s.appendQuotes(ctx, fetched, result)

	s.logger.Infof("Synced week %d season %d via %s: %d updated, %d quotes, %d failures",
		week, season, source, result.Updated, result.QuotesAdded, len(result.Failures))
	return result, nil
}

// SyncGame refreshes a single game and its odds. The game must already be
// known so its week can be resolved.
func (s *SyncService) SyncGame(ctx context.Context, season, gameID int, force bool) (*SyncResult, error) {
	known, err := s.games.FindByID(ctx, season, gameID)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load game %d", gameID), err)
	}
	if known == nil {
		return nil, models.ValidationError("game %d not known for season %d; sync its week first", gameID, season)
	}

	fetched, source, err := s.feed.GamesForWeek(ctx, season, known.Week)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Source: source}
	for i := range fetched {
		game := &fetched[i]
		if game.ID != gameID {
			continue
		}
		if force || gameChanged(known, game) {
			updated, err := s.games.BulkUpsert(ctx, []*models.Game{game})
			if err != nil {
				return nil, models.PersistenceError("write game", err)
			}
			result.Updated = updated
		}
		s.appendQuotes(ctx, []models.Game{*game}, result)
		return result, nil
	}
	return nil, models.UpstreamError(fmt.Sprintf("game %d missing from upstream week %d", gameID, known.Week), nil)
}

// appendQuotes fetches and appends a quote per not-yet-started game; odds
// failures are per-item, never fatal to the sync
func (s *SyncService) appendQuotes(ctx context.Context, games []models.Game, result *SyncResult) {
	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i := range games {
		game := games[i]
		if game.State != models.GameStateScheduled {
			continue
		}
		group.Go(func() error {
			quote, err := s.feed.QuoteForGame(gctx, &game)
			if err != nil {
				s.logger.Debugf("No quote for game %d (%s): %v", game.ID, game.Matchup(), err)
				mu.Lock()
				result.Failures = append(result.Failures, ItemFailure{
					GameID: game.ID,
					Reason: fmt.Sprintf("odds: %v", err),
				})
				mu.Unlock()
				return nil
			}
			if err := s.odds.Append(gctx, quote); err != nil {
				mu.Lock()
				result.Failures = append(result.Failures, ItemFailure{
					GameID: game.ID,
					Reason: fmt.Sprintf("store quote: %v", err),
				})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.QuotesAdded++
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
}

// gameChanged reports whether the fetched game differs from the stored one
// in any settled-upon field
func gameChanged(existing, fetched *models.Game) bool {
	if existing == nil {
		return true
	}
	return existing.State != fetched.State ||
		!existing.Start.Equal(fetched.Start) ||
		existing.Quarter != fetched.Quarter ||
		!intPtrEqual(existing.HomeScore, fetched.HomeScore) ||
		!intPtrEqual(existing.AwayScore, fetched.AwayScore)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
