package services

import (
	"testing"
	"time"

	"survivor-pool-go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteScoreboardPayload = `{
	"events": [
		{
			"id": "401547401",
			"date": "2025-09-07T17:00Z",
			"week": {"number": 1},
			"season": {"year": 2025, "type": 2},
			"status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}, "period": 4},
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "27", "team": {"abbreviation": "KC"}},
					{"homeAway": "away", "score": "13", "team": {"abbreviation": "DEN"}}
				]
			}]
		},
		{
			"id": "401547402",
			"date": "2025-09-07T20:25Z",
			"week": {"number": 1},
			"season": {"year": 2025, "type": 2},
			"status": {"type": {"name": "STATUS_SCHEDULED", "state": "pre", "completed": false}, "period": 0},
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "0", "team": {"abbreviation": "BUF"}},
					{"homeAway": "away", "score": "0", "team": {"abbreviation": "NYJ"}}
				]
			}]
		}
	]
}`

func TestParseSiteScoreboard(t *testing.T) {
	games, ok := parseSiteScoreboard([]byte(siteScoreboardPayload))
	require.True(t, ok)
	require.Len(t, games, 2)

	final := games[0]
	assert.Equal(t, 401547401, final.ID)
	assert.Equal(t, 2025, final.Season)
	assert.Equal(t, 1, final.Week)
	assert.Equal(t, "KC", final.Home)
	assert.Equal(t, "DEN", final.Away)
	assert.Equal(t, models.GameStateFinal, final.State)
	require.NotNil(t, final.HomeScore)
	assert.Equal(t, 27, *final.HomeScore)
	assert.Equal(t, 4, final.Quarter)

	upcoming := games[1]
	assert.Equal(t, models.GameStateScheduled, upcoming.State)
	assert.Nil(t, upcoming.HomeScore, "scores stay nil before kickoff")
	assert.Equal(t, time.Date(2025, 9, 7, 20, 25, 0, 0, time.UTC), upcoming.Start)
}

func TestParseCoreEvents(t *testing.T) {
	payload := `{
		"items": [{
			"id": "401547403",
			"date": "2025-09-08T00:20:00Z",
			"week": 1,
			"season": 2025,
			"status": {"name": "STATUS_IN_PROGRESS", "state": "in", "completed": false},
			"homeTeam": {"abbreviation": "DAL", "score": 14},
			"awayTeam": {"abbreviation": "PHI", "score": 21}
		}]
	}`

	games, ok := parseCoreEvents([]byte(payload))
	require.True(t, ok)
	require.Len(t, games, 1)

	game := games[0]
	assert.Equal(t, models.GameStateInProgress, game.State)
	assert.Equal(t, "DAL", game.Home)
	require.NotNil(t, game.AwayScore)
	assert.Equal(t, 21, *game.AwayScore)
}

func TestParseEventSummary(t *testing.T) {
	payload := `{
		"header": {
			"id": "401547401",
			"date": "2025-09-07T17:00Z",
			"week": {"number": 1},
			"season": {"year": 2025, "type": 2},
			"status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}, "period": 4},
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "27", "team": {"abbreviation": "KC"}},
					{"homeAway": "away", "score": "13", "team": {"abbreviation": "DEN"}}
				]
			}]
		}
	}`

	games, ok := parseEventSummary([]byte(payload))
	require.True(t, ok)
	require.Len(t, games, 1)
	assert.Equal(t, 401547401, games[0].ID)
}

func TestAdapterOrderFirstMatchWins(t *testing.T) {
	for _, adapter := range scoreboardAdapters {
		games, ok := adapter.parse([]byte(siteScoreboardPayload))
		if adapter.name == "site_scoreboard" {
			assert.True(t, ok)
			assert.Len(t, games, 2)
		} else {
			assert.False(t, ok, "adapter %q should not claim a site scoreboard payload", adapter.name)
		}
	}
}

func TestAdaptersRejectUnknownShape(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"unexpected": true}`),
		[]byte(`not even json`),
		[]byte(`[]`),
	}
	for _, payload := range payloads {
		for _, adapter := range scoreboardAdapters {
			if _, ok := adapter.parse(payload); ok {
				t.Errorf("adapter %q claimed unrecognizable payload %q", adapter.name, payload)
			}
		}
	}
}

func TestConvertFeedState(t *testing.T) {
	tests := []struct {
		state     string
		name      string
		completed bool
		want      models.GameState
	}{
		{"pre", "STATUS_SCHEDULED", false, models.GameStateScheduled},
		{"in", "STATUS_IN_PROGRESS", false, models.GameStateInProgress},
		{"post", "STATUS_FINAL", true, models.GameStateFinal},
		{"post", "STATUS_END_PERIOD", false, models.GameStateScheduled},
		{"pre", "STATUS_POSTPONED", false, models.GameStatePostponed},
		{"post", "STATUS_CANCELED", false, models.GameStateCanceled},
		{"post", "STATUS_CANCELLED", false, models.GameStateCanceled},
	}
	for _, tt := range tests {
		got := convertFeedState(tt.state, tt.name, tt.completed)
		assert.Equal(t, tt.want, got, "state=%s name=%s completed=%t", tt.state, tt.name, tt.completed)
	}
}

func TestConvertEventSkipsNonRegularSeason(t *testing.T) {
	event := feedEvent{ID: "1", Date: "2025-08-10T17:00Z"}
	event.Season.Type = 1
	event.Competitions = []feedCompetition{{Competitors: []feedCompetitor{{}, {}}}}

	_, ok := convertEvent(event)
	assert.False(t, ok, "preseason games must be dropped")
}

func TestParseOddsPayload(t *testing.T) {
	payload := `{
		"items": [{
			"provider": {"name": "testbook"},
			"spread": -6.5,
			"overUnder": 47.5,
			"homeTeamOdds": {"moneyLine": -280},
			"awayTeamOdds": {"moneyLine": 230}
		}]
	}`
	game := &models.Game{ID: 301, Season: 2025, Home: "KC", Away: "DEN"}

	quote, ok := parseOddsPayload([]byte(payload), game)
	require.True(t, ok)
	assert.Equal(t, 301, quote.GameID)
	assert.Equal(t, "testbook", quote.Book)
	require.NotNil(t, quote.HomeSpread)
	assert.Equal(t, -6.5, *quote.HomeSpread)
	require.NotNil(t, quote.AwaySpread)
	assert.Equal(t, 6.5, *quote.AwaySpread, "away spread mirrors the home quote")
	require.NotNil(t, quote.HomeMoneyline)
	assert.Equal(t, -280, *quote.HomeMoneyline)
	require.NotNil(t, quote.Total)
	assert.Equal(t, 47.5, *quote.Total)
}

func TestParseOddsPayloadMissingMarkets(t *testing.T) {
	payload := `{"items": [{"provider": {"name": "testbook"}}]}`
	game := &models.Game{ID: 301, Season: 2025}

	quote, ok := parseOddsPayload([]byte(payload), game)
	require.True(t, ok)
	assert.Nil(t, quote.HomeSpread)
	assert.Nil(t, quote.HomeMoneyline)

	_, ok = parseOddsPayload([]byte(`{"items": []}`), game)
	assert.False(t, ok, "empty quote list means no odds")
}
