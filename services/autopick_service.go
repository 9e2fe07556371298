package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"survivor-pool-go/database"
	"survivor-pool-go/logging"
	"survivor-pool-go/models"

	"golang.org/x/sync/errgroup"
)

// AutoPickStatus tags the outcome of an auto-pick attempt
type AutoPickStatus string

const (
	// AutoPickPicked means a pick was written
	AutoPickPicked AutoPickStatus = "picked"
	// AutoPickNoGames means every game of the week is already locked or none
	// is scheduled; nothing was written
	AutoPickNoGames AutoPickStatus = "no_games"
	// AutoPickNoAvailableTeams means the participant already used every team
	// among the candidate games; nothing was written
	AutoPickNoAvailableTeams AutoPickStatus = "no_available_teams"
	// AutoPickKeptManual means a manual pick already exists and wins
	AutoPickKeptManual AutoPickStatus = "kept_manual"
)

// AutoPickOutcome is the tagged result of one auto-pick attempt
type AutoPickOutcome struct {
	Status AutoPickStatus `json:"status"`
	Team   string         `json:"team,omitempty"`
	GameID int            `json:"game_id,omitempty"`
}

// LeagueAutoPickResult reports a league-wide auto-pick sweep
type LeagueAutoPickResult struct {
	Picked   int           `json:"picked"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// AutoPickService selects the statistically strongest available team for
// participants who failed to pick before lock, using the latest market odds.
type AutoPickService struct {
	games   GameStore
	picks   PickStore
	odds    OddsStore
	users   UserStore
	lock    models.LockPolicy
	workers int
	logger  *logging.Logger
}

// NewAutoPickService creates a new auto-pick service
func NewAutoPickService(games GameStore, picks PickStore, odds OddsStore, users UserStore, workers int) *AutoPickService {
	if workers < 1 {
		workers = 1
	}
	return &AutoPickService{
		games:   games,
		picks:   picks,
		odds:    odds,
		users:   users,
		workers: workers,
		logger:  logging.WithPrefix("AutoPickService"),
	}
}

// candidate is one pickable team in one not-yet-locked game
type candidate struct {
	team     string
	game     *models.Game
	home     bool
	strength float64
}

// SelectForParticipant picks the strongest unused team among this week's
// not-yet-started games and upserts an auto pick. A manual pick always wins;
// an older auto pick may be replaced. "No games" and "no available teams"
// are normal outcomes, not errors.
func (s *AutoPickService) SelectForParticipant(ctx context.Context, userID, season, week int, now time.Time) (*AutoPickOutcome, error) {
	existing, err := s.picks.FindByUserWeek(ctx, userID, season, week)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load pick for user %d", userID), err)
	}
	if existing != nil && !existing.AutoPick {
		return &AutoPickOutcome{Status: AutoPickKeptManual, Team: existing.Team, GameID: existing.GameID}, nil
	}

	used, err := s.usedTeams(ctx, userID, season, week)
	if err != nil {
		return nil, err
	}

	weekGames, err := s.games.FindByWeek(ctx, season, week)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load games for week %d", week), err)
	}

	// Candidates are games that have not started yet; in-progress, final and
	// postponed games cannot receive a new pick
	var open []*models.Game
	for _, game := range weekGames {
		if game.State == models.GameStateScheduled && now.Before(game.Start) {
			open = append(open, game)
		}
	}
	if len(open) == 0 {
		return &AutoPickOutcome{Status: AutoPickNoGames}, nil
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].Start.Equal(open[j].Start) {
			return open[i].Start.Before(open[j].Start)
		}
		return open[i].ID < open[j].ID
	})

	gameIDs := make([]int, len(open))
	for i, game := range open {
		gameIDs[i] = game.ID
	}
	quotes, err := s.odds.LatestForGames(ctx, season, gameIDs)
	if err != nil {
		return nil, models.PersistenceError("load latest odds", err)
	}

	var choice *candidate
	if len(quotes) == 0 {
		choice = selectBySchedule(open, used)
	} else {
		choice = selectByStrength(open, quotes, used)
	}
	if choice == nil {
		return &AutoPickOutcome{Status: AutoPickNoAvailableTeams}, nil
	}

	if err := s.writePick(ctx, existing, userID, season, week, choice); err != nil {
		if errors.Is(err, database.ErrStaleRevision) {
			// Raced with a concurrent (likely manual) pick; the existing pick wins
			s.logger.Infof("Auto-pick for user %d week %d lost a write race, keeping existing pick", userID, week)
			return &AutoPickOutcome{Status: AutoPickKeptManual}, nil
		}
		return nil, err
	}

	s.logger.Infof("Auto-picked %s (%s) for user %d week %d", choice.team, choice.game.Matchup(), userID, week)
	return &AutoPickOutcome{Status: AutoPickPicked, Team: choice.team, GameID: choice.game.ID}, nil
}

// SelectForLeague applies auto-pick to every participant lacking a pick for
// the week. Failures are collected per participant.
func (s *AutoPickService) SelectForLeague(ctx context.Context, season, week int, now time.Time) (*LeagueAutoPickResult, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, models.PersistenceError("load participants", err)
	}

	var mu sync.Mutex
	result := &LeagueAutoPickResult{}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for _, user := range users {
		user := user
		group.Go(func() error {
			existing, err := s.picks.FindByUserWeek(gctx, user.ID, season, week)
			if err != nil {
				mu.Lock()
				result.Failures = append(result.Failures, ItemFailure{UserID: user.ID, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			if existing != nil {
				return nil
			}

			outcome, err := s.SelectForParticipant(gctx, user.ID, season, week, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, ItemFailure{UserID: user.ID, Reason: err.Error()})
				return nil
			}
			if outcome.Status == AutoPickPicked {
				result.Picked++
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}

	s.logger.Infof("League auto-pick for week %d: %d picked, %d failures",
		week, result.Picked, len(result.Failures))
	return result, nil
}

// usedTeams returns the set of teams the participant chose in other weeks
// this season. The current week is excluded: an auto pick being replaced
// must not block its own team.
func (s *AutoPickService) usedTeams(ctx context.Context, userID, season, week int) (map[string]bool, error) {
	history, err := s.picks.FindByUserSeason(ctx, userID, season)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load pick history for user %d", userID), err)
	}
	used := make(map[string]bool)
	for _, p := range history {
		if p.Week != week {
			used[p.Team] = true
		}
	}
	return used, nil
}

// selectByStrength ranks every unused team by market-derived favorite
// strength and returns the best. Strength comes from the latest quote per
// game: a known spread for the team's side beats a moneyline, and a team
// with no market data ranks below every scored candidate. Ties break to the
// home team, then the earlier game, then team id.
func selectByStrength(open []*models.Game, quotes map[int]*models.OddsQuote, used map[string]bool) *candidate {
	var candidates []candidate
	for _, game := range open {
		for _, side := range []struct {
			team string
			home bool
		}{{game.Home, true}, {game.Away, false}} {
			if used[side.team] {
				continue
			}
			candidates = append(candidates, candidate{
				team:     side.team,
				game:     game,
				home:     side.home,
				strength: strengthFor(quotes[game.ID], side.home),
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.strength != b.strength {
			return a.strength > b.strength
		}
		if a.home != b.home {
			return a.home
		}
		if !a.game.Start.Equal(b.game.Start) {
			return a.game.Start.Before(b.game.Start)
		}
		return a.team < b.team
	})
	return &candidates[0]
}

// strengthFor scores one side of a game from its latest quote. A team
// favored by N points has spread -N, giving strength +N; a favorite's
// negative moneyline likewise yields positive strength. Missing markets
// yield negative infinity so a scored candidate always outranks them.
func strengthFor(quote *models.OddsQuote, home bool) float64 {
	if quote == nil {
		return math.Inf(-1)
	}
	if spread := quote.SpreadFor(home); spread != nil {
		return -*spread
	}
	if moneyline := quote.MoneylineFor(home); moneyline != nil {
		return -float64(*moneyline)
	}
	return math.Inf(-1)
}

// selectBySchedule is the degraded rule used when no quote exists for any
// candidate game: the home team of the earliest-starting game if unused,
// otherwise the first unused team in schedule order.
func selectBySchedule(open []*models.Game, used map[string]bool) *candidate {
	for _, game := range open {
		if !used[game.Home] {
			return &candidate{team: game.Home, game: game, home: true}
		}
		if !used[game.Away] {
			return &candidate{team: game.Away, game: game, home: false}
		}
	}
	return nil
}

// writePick inserts a fresh auto pick or replaces an older auto pick
func (s *AutoPickService) writePick(ctx context.Context, existing *models.Pick, userID, season, week int, choice *candidate) error {
	if existing == nil {
		pick := models.NewPick(userID, season, week, choice.game.ID, choice.team, true)
		if err := s.picks.Insert(ctx, pick); err != nil {
			if errors.Is(err, database.ErrStaleRevision) {
				return err
			}
			return models.PersistenceError(fmt.Sprintf("insert auto pick for user %d", userID), err)
		}
		return nil
	}

	replacement := *existing
	replacement.GameID = choice.game.ID
	replacement.Team = choice.team
	replacement.AutoPick = true
	if err := s.picks.Replace(ctx, &replacement, existing.Revision); err != nil {
		if errors.Is(err, database.ErrStaleRevision) {
			return err
		}
		return models.PersistenceError(fmt.Sprintf("replace auto pick for user %d", userID), err)
	}
	return nil
}
