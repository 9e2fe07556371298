package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"
	"survivor-pool-go/services"

	"github.com/gorilla/mux"
)

// Narrow operation interfaces so the handler can be tested against fakes
// instead of the full service wiring.

// WeekSettler settles one week's picks
type WeekSettler interface {
	SettleWeek(ctx context.Context, season, week int) (*services.SettlementResult, error)
}

// AutoPicker selects picks for one participant or the whole league
type AutoPicker interface {
	SelectForParticipant(ctx context.Context, userID, season, week int, now time.Time) (*services.AutoPickOutcome, error)
	SelectForLeague(ctx context.Context, season, week int, now time.Time) (*services.LeagueAutoPickResult, error)
}

// FeedSyncer reconciles upstream game and odds state
type FeedSyncer interface {
	SyncWeek(ctx context.Context, season, week int, force bool) (*services.SyncResult, error)
	SyncGame(ctx context.Context, season, gameID int, force bool) (*services.SyncResult, error)
}

// ReminderNotifier notifies participants who have not picked yet
type ReminderNotifier interface {
	NotifyPending(ctx context.Context, season, week int, now time.Time) (*services.ReminderResult, error)
}

// AdminHandler exposes the operational trigger surface. Every route is
// idempotent and safe to re-fire; an external scheduler or an operator curl
// is the expected caller.
type AdminHandler struct {
	settlement WeekSettler
	autopick   AutoPicker
	sync       FeedSyncer
	reminders  ReminderNotifier
	season     int
	logger     *logging.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(settlement WeekSettler, autopick AutoPicker, sync FeedSyncer, reminders ReminderNotifier, season int) *AdminHandler {
	return &AdminHandler{
		settlement: settlement,
		autopick:   autopick,
		sync:       sync,
		reminders:  reminders,
		season:     season,
		logger:     logging.WithPrefix("AdminHandler"),
	}
}

// RegisterRoutes mounts the trigger routes on the given router
func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/weeks/{week}/settle", h.SettleWeek).Methods("POST")
	router.HandleFunc("/weeks/{week}/autopick/{userID}", h.AutoPickParticipant).Methods("POST")
	router.HandleFunc("/weeks/{week}/autopick", h.AutoPickLeague).Methods("POST")
	router.HandleFunc("/weeks/{week}/reminders", h.SendReminders).Methods("POST")
	router.HandleFunc("/sync", h.Sync).Methods("POST")
}

// SettleWeek handles POST /admin/weeks/{week}/settle
func (h *AdminHandler) SettleWeek(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.settlement.SettleWeek(r.Context(), h.season, week)
	if err != nil {
		h.logger.Errorf("Settle week %d failed: %v", week, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AutoPickParticipant handles POST /admin/weeks/{week}/autopick/{userID}
func (h *AdminHandler) AutoPickParticipant(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := strconv.Atoi(mux.Vars(r)["userID"])
	if err != nil {
		writeError(w, models.ValidationError("invalid user id: %s", mux.Vars(r)["userID"]))
		return
	}

	outcome, err := h.autopick.SelectForParticipant(r.Context(), userID, h.season, week, time.Now())
	if err != nil {
		h.logger.Errorf("Auto-pick for user %d week %d failed: %v", userID, week, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// AutoPickLeague handles POST /admin/weeks/{week}/autopick
func (h *AdminHandler) AutoPickLeague(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.autopick.SelectForLeague(r.Context(), h.season, week, time.Now())
	if err != nil {
		h.logger.Errorf("League auto-pick for week %d failed: %v", week, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Sync handles POST /admin/sync?week=N or POST /admin/sync?game=N, with an
// optional force=true to rewrite unchanged games
func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	forceValue := r.URL.Query().Get("force")
	force := forceValue == "true" || forceValue == "1"
	weekValue := r.URL.Query().Get("week")
	gameValue := r.URL.Query().Get("game")

	switch {
	case weekValue != "" && gameValue != "":
		writeError(w, models.ValidationError("specify week or game, not both"))
	case weekValue != "":
		week, err := strconv.Atoi(weekValue)
		if err != nil || week < 1 || week > 18 {
			writeError(w, models.ValidationError("invalid week: %s", weekValue))
			return
		}
		result, err := h.sync.SyncWeek(r.Context(), h.season, week, force)
		if err != nil {
			h.logger.Errorf("Sync week %d failed: %v", week, err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case gameValue != "":
		gameID, err := strconv.Atoi(gameValue)
		if err != nil {
			writeError(w, models.ValidationError("invalid game id: %s", gameValue))
			return
		}
		result, err := h.sync.SyncGame(r.Context(), h.season, gameID, force)
		if err != nil {
			h.logger.Errorf("Sync game %d failed: %v", gameID, err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, models.ValidationError("week or game parameter required"))
	}
}

// SendReminders handles POST /admin/weeks/{week}/reminders
func (h *AdminHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.reminders.NotifyPending(r.Context(), h.season, week, time.Now())
	if err != nil {
		h.logger.Errorf("Reminders for week %d failed: %v", week, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// weekParam extracts and bounds the {week} route variable
func weekParam(r *http.Request) (int, error) {
	value := mux.Vars(r)["week"]
	week, err := strconv.Atoi(value)
	if err != nil || week < 1 || week > 18 {
		return 0, models.ValidationError("invalid week: %s", value)
	}
	return week, nil
}
