package services

import (
	"context"
	"fmt"
	"time"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"
)

// Mailer delivers one reminder message
type Mailer interface {
	Send(toEmail, toName, subject, body string) error
}

// ReminderResult reports one reminder pass
type ReminderResult struct {
	Notified int           `json:"notified"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// ReminderService finds participants who have not picked as the week's
// first lock approaches, and notifies them
type ReminderService struct {
	users  UserStore
	picks  PickStore
	games  GameStore
	mailer Mailer
	window time.Duration
	lock   models.LockPolicy
	logger *logging.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(users UserStore, picks PickStore, games GameStore, mailer Mailer, window time.Duration) *ReminderService {
	if window == 0 {
		window = 3 * time.Hour
	}
	return &ReminderService{
		users:  users,
		picks:  picks,
		games:  games,
		mailer: mailer,
		window: window,
		logger: logging.WithPrefix("ReminderService"),
	}
}

// PendingForWeek returns participants with no pick for the week once the
// earliest still-open game starts within the reminder window. Outside the
// window, or with no open games left, the list is empty.
func (s *ReminderService) PendingForWeek(ctx context.Context, season, week int, now time.Time) ([]*models.User, error) {
	games, err := s.games.FindByWeek(ctx, season, week)
	if err != nil {
		return nil, models.PersistenceError(fmt.Sprintf("load games for week %d", week), err)
	}

	var earliest time.Time
	for _, game := range games {
		if game.State != models.GameStateScheduled || !s.lock.IsOpen(game, now) {
			continue
		}
		if earliest.IsZero() || game.Start.Before(earliest) {
			earliest = game.Start
		}
	}
	if earliest.IsZero() || earliest.Sub(now) > s.window {
		return nil, nil
	}

	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, models.PersistenceError("load participants", err)
	}

	var pending []*models.User
	for _, user := range users {
		pick, err := s.picks.FindByUserWeek(ctx, user.ID, season, week)
		if err != nil {
			return nil, models.PersistenceError(fmt.Sprintf("load pick for user %d", user.ID), err)
		}
		if pick == nil {
			pending = append(pending, user)
		}
	}
	return pending, nil
}

// NotifyPending emails every pending participant; delivery failures are
// collected per recipient
func (s *ReminderService) NotifyPending(ctx context.Context, season, week int, now time.Time) (*ReminderResult, error) {
	pending, err := s.PendingForWeek(ctx, season, week, now)
	if err != nil {
		return nil, err
	}

	result := &ReminderResult{}
	subject := fmt.Sprintf("Survivor Pool - Week %d pick reminder", week)
	for _, user := range pending {
		body := fmt.Sprintf(
			"Hello %s,\n\nYou have not made your week %d survivor pick yet and the first game locks soon.\n\nPick now or one will be picked for you at lock.\n",
			user.Name, week)
		if err := s.mailer.Send(user.Email, user.Name, subject, body); err != nil {
			s.logger.Errorf("Failed to notify user %d: %v", user.ID, err)
			result.Failures = append(result.Failures, ItemFailure{
				UserID: user.ID,
				Reason: fmt.Sprintf("send: %v", err),
			})
			continue
		}
		result.Notified++
	}

	s.logger.Infof("Week %d reminders: %d pending, %d notified, %d failures",
		week, len(pending), result.Notified, len(result.Failures))
	return result, nil
}
