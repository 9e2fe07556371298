package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickResult represents the outcome of a pick
type PickResult string

const (
	PickResultPending PickResult = "pending"
	PickResultWin     PickResult = "win"
	PickResultLoss    PickResult = "loss"
	PickResultPush    PickResult = "push"
)

// Pick represents one participant's survivor selection for a week.
// At most one pick exists per (user, season, week) and a team may never be
// reused within a season. Result and margin are written only by settlement
// once the referenced game goes final; the revision counter guards against
// concurrent settlement passes racing on the same pick.
type Pick struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    int                `bson:"user_id" json:"user_id"`
	Season    int                `bson:"season" json:"season"`
	Week      int                `bson:"week" json:"week"`
	GameID    int                `bson:"game_id" json:"game_id"`
	Team      string             `bson:"team" json:"team"`
	Result    PickResult         `bson:"result" json:"result"`
	Margin    *int               `bson:"margin,omitempty" json:"margin,omitempty"`
	AutoPick  bool               `bson:"auto_pick" json:"auto_pick"`
	Revision  int64              `bson:"revision" json:"revision"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewPick creates a pending pick for a participant
func NewPick(userID, season, week, gameID int, team string, autoPick bool) *Pick {
	now := time.Now()
	return &Pick{
		UserID:    userID,
		Season:    season,
		Week:      week,
		GameID:    gameID,
		Team:      team,
		Result:    PickResultPending,
		AutoPick:  autoPick,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEvaluated returns true once settlement has written a final result
func (p *Pick) IsEvaluated() bool {
	return p.Result != PickResultPending
}
