package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"survivor-pool-go/models"
)

// The upstream provider has shipped the same scoreboard data under several
// payload shapes over the years (site scoreboard, core event list, single
// event summary). Each shape gets a named adapter: a pure function that
// either recognizes the payload and returns normalized games, or reports
// false so the next adapter gets a try.
type feedAdapter struct {
	name  string
	parse func(data []byte) ([]models.Game, bool)
}

// scoreboardAdapters is tried in order; the first match wins
var scoreboardAdapters = []feedAdapter{
	{name: "site_scoreboard", parse: parseSiteScoreboard},
	{name: "core_events", parse: parseCoreEvents},
	{name: "event_summary", parse: parseEventSummary},
}

// feedStatus is shared between the site and summary shapes
type feedStatus struct {
	Type struct {
		Name      string `json:"name"`
		State     string `json:"state"`
		Completed bool   `json:"completed"`
	} `json:"type"`
	Period int `json:"period"`
}

type feedCompetitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

type feedCompetition struct {
	Competitors []feedCompetitor `json:"competitors"`
}

type feedEvent struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Week   struct {
		Number int `json:"number"`
	} `json:"week"`
	Season struct {
		Year int `json:"year"`
		Type int `json:"type"`
	} `json:"season"`
	Status       feedStatus        `json:"status"`
	Competitions []feedCompetition `json:"competitions"`
}

// parseSiteScoreboard handles the current shape: a top-level "events" list
func parseSiteScoreboard(data []byte) ([]models.Game, bool) {
	var payload struct {
		Events []feedEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Events == nil {
		return nil, false
	}

	games := make([]models.Game, 0, len(payload.Events))
	for _, event := range payload.Events {
		if game, ok := convertEvent(event); ok {
			games = append(games, game)
		}
	}
	return games, true
}

// parseCoreEvents handles the core API shape: an "items" list with explicit
// homeTeam/awayTeam objects instead of a competitors array
func parseCoreEvents(data []byte) ([]models.Game, bool) {
	var payload struct {
		Items []struct {
			ID     string `json:"id"`
			Date   string `json:"date"`
			Week   int    `json:"week"`
			Season int    `json:"season"`
			Status struct {
				Name      string `json:"name"`
				State     string `json:"state"`
				Completed bool   `json:"completed"`
			} `json:"status"`
			HomeTeam struct {
				Abbreviation string `json:"abbreviation"`
				Score        *int   `json:"score"`
			} `json:"homeTeam"`
			AwayTeam struct {
				Abbreviation string `json:"abbreviation"`
				Score        *int   `json:"score"`
			} `json:"awayTeam"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Items == nil {
		return nil, false
	}

	games := make([]models.Game, 0, len(payload.Items))
	for _, item := range payload.Items {
		gameID, err := strconv.Atoi(item.ID)
		if err != nil {
			continue
		}
		start, ok := parseFeedDate(item.Date)
		if !ok {
			continue
		}
		game := models.Game{
			ID:     gameID,
			Season: item.Season,
			Week:   item.Week,
			Start:  start,
			Home:   item.HomeTeam.Abbreviation,
			Away:   item.AwayTeam.Abbreviation,
			State:  convertFeedState(item.Status.State, item.Status.Name, item.Status.Completed),
		}
		if game.State == models.GameStateInProgress || game.State == models.GameStateFinal {
			game.HomeScore = item.HomeTeam.Score
			game.AwayScore = item.AwayTeam.Score
		}
		games = append(games, game)
	}
	return games, true
}

// parseEventSummary handles the single-event summary shape: one event under
// a "header" object
func parseEventSummary(data []byte) ([]models.Game, bool) {
	var payload struct {
		Header *feedEvent `json:"header"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Header == nil {
		return nil, false
	}
	game, ok := convertEvent(*payload.Header)
	if !ok {
		return nil, true
	}
	return []models.Game{game}, true
}

// convertEvent normalizes one event into a Game; regular season only
func convertEvent(event feedEvent) (models.Game, bool) {
	if event.Season.Type != 0 && event.Season.Type != 2 {
		return models.Game{}, false
	}
	if len(event.Competitions) == 0 || len(event.Competitions[0].Competitors) < 2 {
		return models.Game{}, false
	}
	gameID, err := strconv.Atoi(event.ID)
	if err != nil {
		return models.Game{}, false
	}
	start, ok := parseFeedDate(event.Date)
	if !ok {
		return models.Game{}, false
	}

	game := models.Game{
		ID:      gameID,
		Season:  event.Season.Year,
		Week:    event.Week.Number,
		Start:   start,
		State:   convertFeedState(event.Status.Type.State, event.Status.Type.Name, event.Status.Type.Completed),
		Quarter: event.Status.Period,
	}

	for _, competitor := range event.Competitions[0].Competitors {
		team := competitor.Team.Abbreviation
		score, scoreErr := strconv.Atoi(competitor.Score)
		hasScore := scoreErr == nil &&
			(game.State == models.GameStateInProgress || game.State == models.GameStateFinal)

		if competitor.HomeAway == "home" {
			game.Home = team
			if hasScore {
				game.HomeScore = &score
			}
		} else {
			game.Away = team
			if hasScore {
				game.AwayScore = &score
			}
		}
	}
	return game, true
}

// convertFeedState maps the upstream status vocabulary onto GameState.
// Postponements and cancellations arrive as status names on a "pre" or
// "post" state, so the name is checked first.
func convertFeedState(state, name string, completed bool) models.GameState {
	switch {
	case strings.Contains(name, "POSTPONED"):
		return models.GameStatePostponed
	case strings.Contains(name, "CANCELED"), strings.Contains(name, "CANCELLED"):
		return models.GameStateCanceled
	}

	switch strings.ToLower(state) {
	case "pre":
		return models.GameStateScheduled
	case "in":
		return models.GameStateInProgress
	case "post":
		if completed {
			return models.GameStateFinal
		}
		return models.GameStateScheduled
	default:
		return models.GameStateScheduled
	}
}

// parseFeedDate accepts the two timestamp layouts the feed uses
func parseFeedDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04Z", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// parseOddsPayload normalizes the first provider's quote for a game
func parseOddsPayload(data []byte, game *models.Game) (*models.OddsQuote, bool) {
	var payload struct {
		Items []struct {
			Provider struct {
				Name string `json:"name"`
			} `json:"provider"`
			Spread       *float64 `json:"spread"`
			OverUnder    *float64 `json:"overUnder"`
			HomeTeamOdds struct {
				MoneyLine *int `json:"moneyLine"`
			} `json:"homeTeamOdds"`
			AwayTeamOdds struct {
				MoneyLine *int `json:"moneyLine"`
			} `json:"awayTeamOdds"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Items) == 0 {
		return nil, false
	}

	item := payload.Items[0]
	quote := &models.OddsQuote{
		GameID:        game.ID,
		Season:        game.Season,
		Book:          item.Provider.Name,
		Total:         item.OverUnder,
		HomeMoneyline: item.HomeTeamOdds.MoneyLine,
		AwayMoneyline: item.AwayTeamOdds.MoneyLine,
		FetchedAt:     time.Now(),
	}
	// The feed quotes the spread from the home side; the away side mirrors it
	if item.Spread != nil {
		homeSpread := *item.Spread
		awaySpread := -homeSpread
		quote.HomeSpread = &homeSpread
		quote.AwaySpread = &awaySpread
	}
	return quote, true
}
