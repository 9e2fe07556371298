package models

import "testing"

func evaluatedPick(week int, team string, result PickResult, margin int) *Pick {
	return &Pick{UserID: 1, Season: 2025, Week: week, Team: team, Result: result, Margin: intPtr(margin)}
}

func TestBuildStanding(t *testing.T) {
	picks := []*Pick{
		evaluatedPick(1, "DAL", PickResultLoss, -10),
		evaluatedPick(2, "KC", PickResultWin, 14),
	}

	s := BuildStanding(1, 2025, picks)

	if s.Wins != 1 || s.Losses != 1 || s.Pushes != 0 {
		t.Errorf("record = %d-%d-%d, want 1-1-0", s.Wins, s.Losses, s.Pushes)
	}
	if s.MarginSum != 4 {
		t.Errorf("MarginSum = %d, want 4", s.MarginSum)
	}
	if s.Lives != 1 {
		t.Errorf("Lives = %d, want 1", s.Lives)
	}
	if !s.Alive {
		t.Error("participant with one loss should still be alive")
	}
}

func TestBuildStandingElimination(t *testing.T) {
	picks := []*Pick{
		evaluatedPick(1, "DAL", PickResultLoss, -3),
		evaluatedPick(2, "NYJ", PickResultLoss, -7),
	}

	s := BuildStanding(1, 2025, picks)
	if s.Lives != 0 {
		t.Errorf("Lives = %d, want 0", s.Lives)
	}
	if s.Alive {
		t.Error("two losses should eliminate the participant")
	}
}

func TestBuildStandingLivesNeverNegative(t *testing.T) {
	picks := []*Pick{
		evaluatedPick(1, "DAL", PickResultLoss, -3),
		evaluatedPick(2, "NYJ", PickResultLoss, -7),
		evaluatedPick(3, "CAR", PickResultLoss, -14),
	}

	s := BuildStanding(1, 2025, picks)
	if s.Lives != 0 {
		t.Errorf("Lives = %d, want 0 even with three losses", s.Lives)
	}
}

func TestBuildStandingPushCostsNothing(t *testing.T) {
	picks := []*Pick{
		evaluatedPick(1, "CIN", PickResultPush, 0),
	}

	s := BuildStanding(1, 2025, picks)
	if s.Pushes != 1 || s.Losses != 0 {
		t.Errorf("record = %d-%d-%d, want 0-0-1", s.Wins, s.Losses, s.Pushes)
	}
	if s.Lives != InitialLives {
		t.Errorf("Lives = %d, want %d", s.Lives, InitialLives)
	}
}

func TestBuildStandingIgnoresPending(t *testing.T) {
	picks := []*Pick{
		evaluatedPick(1, "KC", PickResultWin, 14),
		{UserID: 1, Season: 2025, Week: 2, Team: "BUF", Result: PickResultPending},
	}

	s := BuildStanding(1, 2025, picks)
	if s.Wins != 1 || s.Losses != 0 || s.Pushes != 0 {
		t.Errorf("record = %d-%d-%d, want 1-0-0", s.Wins, s.Losses, s.Pushes)
	}
	if s.MarginSum != 14 {
		t.Errorf("MarginSum = %d, want 14", s.MarginSum)
	}
}

func TestSortStandings(t *testing.T) {
	standings := []*Standing{
		{UserID: 1, Alive: false, Lives: 0, MarginSum: 50},
		{UserID: 2, Alive: true, Lives: 1, MarginSum: 10},
		{UserID: 3, Alive: true, Lives: 2, MarginSum: -5},
		{UserID: 4, Alive: true, Lives: 1, MarginSum: 25},
		{UserID: 5, Alive: true, Lives: 1, MarginSum: 25},
	}

	SortStandings(standings)

	wantOrder := []int{3, 4, 5, 2, 1}
	for i, want := range wantOrder {
		if standings[i].UserID != want {
			t.Fatalf("position %d: got user %d, want user %d", i, standings[i].UserID, want)
		}
	}
}
