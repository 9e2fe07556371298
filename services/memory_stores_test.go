package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"survivor-pool-go/database"
	"survivor-pool-go/models"
)

// In-memory store fakes with the same revision semantics as the Mongo
// repositories, so the optimistic-concurrency paths are exercised for real.

type memGameStore struct {
	mu    sync.Mutex
	games map[int]*models.Game
}

func newMemGameStore(games ...*models.Game) *memGameStore {
	s := &memGameStore{games: make(map[int]*models.Game)}
	for _, g := range games {
		copied := *g
		s.games[g.ID] = &copied
	}
	return s
}

func (s *memGameStore) FindByID(_ context.Context, season, gameID int) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.Season != season {
		return nil, nil
	}
	copied := *g
	return &copied, nil
}

func (s *memGameStore) FindByWeek(_ context.Context, season, week int) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Game
	for _, g := range s.games {
		if g.Season == season && g.Week == week {
			copied := *g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memGameStore) FindBySeason(_ context.Context, season int) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Game
	for _, g := range s.games {
		if g.Season == season {
			copied := *g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memGameStore) BulkUpsert(_ context.Context, games []*models.Game) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range games {
		copied := *g
		s.games[g.ID] = &copied
	}
	return len(games), nil
}

type memPickStore struct {
	mu    sync.Mutex
	picks map[string]*models.Pick
}

func newMemPickStore(picks ...*models.Pick) *memPickStore {
	s := &memPickStore{picks: make(map[string]*models.Pick)}
	for _, p := range picks {
		copied := *p
		if copied.Revision == 0 {
			copied.Revision = 1
		}
		s.picks[pickKey(p.UserID, p.Season, p.Week)] = &copied
	}
	return s
}

func pickKey(userID, season, week int) string {
	return fmt.Sprintf("%d/%d/%d", userID, season, week)
}

func (s *memPickStore) Insert(_ context.Context, pick *models.Pick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pickKey(pick.UserID, pick.Season, pick.Week)
	if _, exists := s.picks[key]; exists {
		return database.ErrStaleRevision
	}
	pick.Revision = 1
	copied := *pick
	s.picks[key] = &copied
	return nil
}

func (s *memPickStore) FindByUserWeek(_ context.Context, userID, season, week int) (*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.picks[pickKey(userID, season, week)]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *memPickStore) FindByUserSeason(_ context.Context, userID, season int) ([]*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Pick
	for _, p := range s.picks {
		if p.UserID == userID && p.Season == season {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (s *memPickStore) FindByWeek(_ context.Context, season, week int) ([]*models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Pick
	for _, p := range s.picks {
		if p.Season == season && p.Week == week {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *memPickStore) UpdateResult(_ context.Context, pick *models.Pick, result models.PickResult, margin int, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.picks[pickKey(pick.UserID, pick.Season, pick.Week)]
	if !ok || stored.Revision != expectedRevision {
		return database.ErrStaleRevision
	}
	stored.Result = result
	stored.Margin = &margin
	stored.Revision++
	return nil
}

func (s *memPickStore) Replace(_ context.Context, pick *models.Pick, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.picks[pickKey(pick.UserID, pick.Season, pick.Week)]
	if !ok || stored.Revision != expectedRevision {
		return database.ErrStaleRevision
	}
	stored.GameID = pick.GameID
	stored.Team = pick.Team
	stored.AutoPick = pick.AutoPick
	stored.Result = models.PickResultPending
	stored.Margin = nil
	stored.Revision++
	pick.Revision = stored.Revision
	return nil
}

type memOddsStore struct {
	mu     sync.Mutex
	quotes []*models.OddsQuote
}

func newMemOddsStore(quotes ...*models.OddsQuote) *memOddsStore {
	s := &memOddsStore{}
	for _, q := range quotes {
		copied := *q
		s.quotes = append(s.quotes, &copied)
	}
	return s
}

func (s *memOddsStore) Append(_ context.Context, quote *models.OddsQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *quote
	s.quotes = append(s.quotes, &copied)
	return nil
}

func (s *memOddsStore) LatestForGames(_ context.Context, season int, gameIDs []int) (map[int]*models.OddsQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[int]bool, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = true
	}
	latest := make(map[int]*models.OddsQuote)
	for _, q := range s.quotes {
		if q.Season != season || !wanted[q.GameID] {
			continue
		}
		if current, ok := latest[q.GameID]; !ok || q.FetchedAt.After(current.FetchedAt) {
			copied := *q
			latest[q.GameID] = &copied
		}
	}
	return latest, nil
}

type memStandingStore struct {
	mu        sync.Mutex
	standings map[string]*models.Standing
}

func newMemStandingStore() *memStandingStore {
	return &memStandingStore{standings: make(map[string]*models.Standing)}
}

func standingKey(userID, season int) string {
	return fmt.Sprintf("%d/%d", userID, season)
}

func (s *memStandingStore) Get(_ context.Context, userID, season int) (*models.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.standings[standingKey(userID, season)]
	if !ok {
		return nil, nil
	}
	copied := *st
	return &copied, nil
}

func (s *memStandingStore) Upsert(_ context.Context, standing *models.Standing, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := standingKey(standing.UserID, standing.Season)
	var current int64
	if existing, ok := s.standings[key]; ok {
		current = existing.Revision
	}
	if current != expectedRevision {
		return database.ErrStaleRevision
	}
	standing.Revision = expectedRevision + 1
	copied := *standing
	s.standings[key] = &copied
	return nil
}

func (s *memStandingStore) ListBySeason(_ context.Context, season int) ([]*models.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Standing
	for _, st := range s.standings {
		if st.Season == season {
			copied := *st
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type memUserStore struct {
	users map[int]*models.User
}

func newMemUserStore(users ...*models.User) *memUserStore {
	s := &memUserStore{users: make(map[int]*models.User)}
	for _, u := range users {
		copied := *u
		s.users[u.ID] = &copied
	}
	return s
}

func (s *memUserStore) GetAll(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memUserStore) GetByID(_ context.Context, userID int) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
