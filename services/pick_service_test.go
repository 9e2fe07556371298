package services

import (
	"context"
	"testing"
	"time"

	"survivor-pool-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pickFixture struct {
	games   *memGameStore
	picks   *memPickStore
	service *PickService
}

func newPickFixture(games []*models.Game, picks []*models.Pick) *pickFixture {
	f := &pickFixture{
		games: newMemGameStore(games...),
		picks: newMemPickStore(picks...),
	}
	users := newMemUserStore(&models.User{ID: 1, Name: "Alice", Email: "alice@example.com"})
	f.service = NewPickService(f.picks, f.games, users)
	return f
}

func TestCreatePick(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{{
		ID: 101, Season: testSeason, Week: 1, Start: kickoff,
		Away: "DEN", Home: "KC", State: models.GameStateScheduled,
	}}
	f := newPickFixture(games, nil)

	pick, err := f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 101, "KC", kickoff.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "KC", pick.Team)
	assert.False(t, pick.AutoPick)
	assert.Equal(t, models.PickResultPending, pick.Result)
}

func TestCreatePickRejectsLockedGame(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{{
		ID: 101, Season: testSeason, Week: 1, Start: kickoff,
		Away: "DEN", Home: "KC", State: models.GameStateScheduled,
	}}
	f := newPickFixture(games, nil)

	_, err := f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 101, "KC", kickoff)
	require.Error(t, err)
	assert.Equal(t, models.ErrorKindState, models.KindOf(err))
}

func TestCreatePickAllowsPostponedGame(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{{
		ID: 101, Season: testSeason, Week: 1, Start: kickoff,
		Away: "DEN", Home: "KC", State: models.GameStatePostponed,
	}}
	f := newPickFixture(games, nil)

	_, err := f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 101, "KC", kickoff.Add(48*time.Hour))
	assert.NoError(t, err, "a postponed game reopens even after its original start")
}

func TestCreatePickRejectsReusedTeam(t *testing.T) {
	kickoff := time.Date(2025, 9, 14, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{{
		ID: 201, Season: testSeason, Week: 2, Start: kickoff,
		Away: "LV", Home: "KC", State: models.GameStateScheduled,
	}}
	history := []*models.Pick{
		{UserID: 1, Season: testSeason, Week: 1, GameID: 101, Team: "KC", Result: models.PickResultWin},
	}
	f := newPickFixture(games, history)

	_, err := f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 2, 201, "KC", kickoff.Add(-time.Hour))
	require.Error(t, err)
	assert.Equal(t, models.ErrorKindState, models.KindOf(err))
}

func TestCreatePickValidation(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{{
		ID: 101, Season: testSeason, Week: 1, Start: kickoff,
		Away: "DEN", Home: "KC", State: models.GameStateScheduled,
	}}
	f := newPickFixture(games, nil)
	now := kickoff.Add(-time.Hour)

	_, err := f.service.CreateOrUpdatePick(context.Background(), 99, testSeason, 1, 101, "KC", now)
	assert.Equal(t, models.ErrorKindValidation, models.KindOf(err), "unknown user")

	_, err = f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 999, "KC", now)
	assert.Equal(t, models.ErrorKindValidation, models.KindOf(err), "unknown game")

	_, err = f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 2, 101, "KC", now)
	assert.Equal(t, models.ErrorKindValidation, models.KindOf(err), "week mismatch")

	_, err = f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 101, "NE", now)
	assert.Equal(t, models.ErrorKindValidation, models.KindOf(err), "team not in game")
}

func TestChangePickWhileOpen(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)
	games := []*models.Game{
		{ID: 101, Season: testSeason, Week: 1, Start: kickoff, Away: "DEN", Home: "KC", State: models.GameStateScheduled},
		{ID: 102, Season: testSeason, Week: 1, Start: kickoff.Add(3 * time.Hour), Away: "NYJ", Home: "BUF", State: models.GameStateScheduled},
	}
	existing := &models.Pick{UserID: 1, Season: testSeason, Week: 1, GameID: 101, Team: "KC", AutoPick: true, Result: models.PickResultPending}
	f := newPickFixture(games, []*models.Pick{existing})

	pick, err := f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 102, "BUF", kickoff.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "BUF", pick.Team)
	assert.False(t, pick.AutoPick, "a manual change clears the auto flag")

	stored, _ := f.picks.FindByUserWeek(context.Background(), 1, testSeason, 1)
	assert.Equal(t, 102, stored.GameID)
	assert.Equal(t, "BUF", stored.Team)
}

func TestChangePickRejectedAfterCurrentGameLocks(t *testing.T) {
	kickoff := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)
	lateKickoff := kickoff.Add(7 * time.Hour)
	games := []*models.Game{
		{ID: 101, Season: testSeason, Week: 1, Start: kickoff, Away: "DEN", Home: "KC", State: models.GameStateInProgress},
		{ID: 102, Season: testSeason, Week: 1, Start: lateKickoff, Away: "NYJ", Home: "BUF", State: models.GameStateScheduled},
	}
	existing := &models.Pick{UserID: 1, Season: testSeason, Week: 1, GameID: 101, Team: "KC", Result: models.PickResultPending}
	f := newPickFixture(games, []*models.Pick{existing})

	// The target game is still open, but the pick rode game 101 into kickoff
	_, err := f.service.CreateOrUpdatePick(context.Background(), 1, testSeason, 1, 102, "BUF", kickoff.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, models.ErrorKindState, models.KindOf(err))

	stored, _ := f.picks.FindByUserWeek(context.Background(), 1, testSeason, 1)
	assert.Equal(t, "KC", stored.Team, "locked pick must stay untouched")
}
