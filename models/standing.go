package models

import (
	"sort"
	"time"
)

// InitialLives is the fixed number of losses a participant can absorb
// before elimination. A push never costs a life.
const InitialLives = 2

// Standing is a participant's derived aggregate record. It is rebuilt from
// the full pick history on every recomputation rather than patched with
// deltas, which keeps settlement idempotent and self-healing: a corrected
// score simply produces a different rebuild, and may even restore Alive.
type Standing struct {
	UserID    int       `bson:"user_id" json:"user_id"`
	Season    int       `bson:"season" json:"season"`
	Wins      int       `bson:"wins" json:"wins"`
	Losses    int       `bson:"losses" json:"losses"`
	Pushes    int       `bson:"pushes" json:"pushes"`
	MarginSum int       `bson:"margin_sum" json:"margin_sum"`
	Lives     int       `bson:"lives" json:"lives"`
	Alive     bool      `bson:"alive" json:"alive"`
	Revision  int64     `bson:"revision" json:"revision"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BuildStanding computes a participant's standing from their full season
// pick history. Pending picks contribute nothing.
func BuildStanding(userID, season int, picks []*Pick) *Standing {
	s := &Standing{
		UserID:    userID,
		Season:    season,
		UpdatedAt: time.Now(),
	}
	for _, p := range picks {
		switch p.Result {
		case PickResultWin:
			s.Wins++
		case PickResultLoss:
			s.Losses++
		case PickResultPush:
			s.Pushes++
		}
		if p.Margin != nil {
			s.MarginSum += *p.Margin
		}
	}
	s.Lives = InitialLives - s.Losses
	if s.Lives < 0 {
		s.Lives = 0
	}
	s.Alive = s.Lives > 0
	return s
}

// SortStandings orders standings for display and final tie-breaks:
// alive before eliminated, then lives descending, then cumulative margin
// descending, then user id for a stable total order.
func SortStandings(standings []*Standing) {
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Alive != b.Alive {
			return a.Alive
		}
		if a.Lives != b.Lives {
			return a.Lives > b.Lives
		}
		if a.MarginSum != b.MarginSum {
			return a.MarginSum > b.MarginSum
		}
		return a.UserID < b.UserID
	})
}
