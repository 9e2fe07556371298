package models

import (
	"fmt"
	"time"
)

// GameState represents the current state of a game
type GameState string

const (
	GameStateScheduled  GameState = "scheduled"
	GameStateInProgress GameState = "in_progress"
	GameStateFinal      GameState = "final"
	GameStatePostponed  GameState = "postponed"
	GameStateCanceled   GameState = "canceled"
)

// Game represents one scheduled matchup with scores and metadata.
// Scores stay nil until the upstream feed reports them; the winner is always
// derived from scores, never stored.
type Game struct {
	ID        int       `json:"id" bson:"id"`
	Season    int       `json:"season" bson:"season"`
	Week      int       `json:"week" bson:"week"`
	Start     time.Time `json:"start" bson:"start"`
	Away      string    `json:"away" bson:"away"`
	Home      string    `json:"home" bson:"home"`
	State     GameState `json:"state" bson:"state"`
	AwayScore *int      `json:"awayScore,omitempty" bson:"awayScore,omitempty"`
	HomeScore *int      `json:"homeScore,omitempty" bson:"homeScore,omitempty"`
	Quarter   int       `json:"quarter" bson:"quarter"`
}

// IsFinal returns true if the game is finished
func (g *Game) IsFinal() bool {
	return g.State == GameStateFinal
}

// IsInProgress returns true if the game is currently being played
func (g *Game) IsInProgress() bool {
	return g.State == GameStateInProgress
}

// HasTeam returns true if the given team plays in this game
func (g *Game) HasTeam(team string) bool {
	return team == g.Home || team == g.Away
}

// Winner returns the winning team abbreviation, or empty string on a tie
// or while the game is not final or scores are missing.
func (g *Game) Winner() string {
	if !g.IsFinal() || g.HomeScore == nil || g.AwayScore == nil {
		return ""
	}
	if *g.HomeScore > *g.AwayScore {
		return g.Home
	}
	if *g.AwayScore > *g.HomeScore {
		return g.Away
	}
	return ""
}

// ScoreFor returns the scored points for the given team and its opponent.
// ok is false when the team does not play in this game or scores are missing.
func (g *Game) ScoreFor(team string) (mine, other int, ok bool) {
	if g.HomeScore == nil || g.AwayScore == nil {
		return 0, 0, false
	}
	switch team {
	case g.Home:
		return *g.HomeScore, *g.AwayScore, true
	case g.Away:
		return *g.AwayScore, *g.HomeScore, true
	default:
		return 0, 0, false
	}
}

// Matchup returns a short "AWY @ HOM" description for logs and emails
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.Away, g.Home)
}
