package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OddsQuote is one point-in-time market snapshot for a game. Quotes are
// append-only; the latest quote per game is the one with the greatest
// FetchedAt. Spread and moneyline fields are nil when the book did not
// publish that market.
type OddsQuote struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GameID        int                `bson:"game_id" json:"game_id"`
	Season        int                `bson:"season" json:"season"`
	Book          string             `bson:"book" json:"book"`
	HomeSpread    *float64           `bson:"home_spread,omitempty" json:"home_spread,omitempty"`
	AwaySpread    *float64           `bson:"away_spread,omitempty" json:"away_spread,omitempty"`
	HomeMoneyline *int               `bson:"home_moneyline,omitempty" json:"home_moneyline,omitempty"`
	AwayMoneyline *int               `bson:"away_moneyline,omitempty" json:"away_moneyline,omitempty"`
	Total         *float64           `bson:"total,omitempty" json:"total,omitempty"`
	FetchedAt     time.Time          `bson:"fetched_at" json:"fetched_at"`
}

// SpreadFor returns the quoted spread for one side of the game
func (q *OddsQuote) SpreadFor(home bool) *float64 {
	if home {
		return q.HomeSpread
	}
	return q.AwaySpread
}

// MoneylineFor returns the quoted moneyline for one side of the game
func (q *OddsQuote) MoneylineFor(home bool) *int {
	if home {
		return q.HomeMoneyline
	}
	return q.AwayMoneyline
}
