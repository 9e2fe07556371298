package models

import "time"

// LockPolicy decides whether a pick on a game may still be created or edited.
// The decision is re-derived from the game record on every check and is never
// cached on the pick: a game pushed back to postponed or canceled reopens any
// pick that referenced it until a new start time is set and passed.
type LockPolicy struct{}

// IsOpen returns true while a pick on the game can be created or changed
func (LockPolicy) IsOpen(game *Game, now time.Time) bool {
	switch game.State {
	case GameStateScheduled:
		return now.Before(game.Start)
	case GameStatePostponed, GameStateCanceled:
		return true
	default:
		return false
	}
}
