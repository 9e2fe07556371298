package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"

	"github.com/gorilla/mux"
)

// PickSubmitter records a participant's selection
type PickSubmitter interface {
	CreateOrUpdatePick(ctx context.Context, userID, season, week, gameID int, team string, now time.Time) (*models.Pick, error)
}

// StandingsReader returns the season rankings
type StandingsReader interface {
	Rankings(ctx context.Context, season int) ([]*models.Standing, error)
}

// PickHandler serves the participant-facing routes: pick submission and the
// standings board
type PickHandler struct {
	picks     PickSubmitter
	standings StandingsReader
	season    int
	logger    *logging.Logger
}

// NewPickHandler creates a new pick handler
func NewPickHandler(picks PickSubmitter, standings StandingsReader, season int) *PickHandler {
	return &PickHandler{
		picks:     picks,
		standings: standings,
		season:    season,
		logger:    logging.WithPrefix("PickHandler"),
	}
}

// RegisterRoutes mounts the participant routes on the given router
func (h *PickHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/picks", h.SubmitPick).Methods("POST")
	router.HandleFunc("/standings", h.GetStandings).Methods("GET")
}

type pickRequest struct {
	UserID int    `json:"user_id"`
	Week   int    `json:"week"`
	GameID int    `json:"game_id"`
	Team   string `json:"team"`
}

// SubmitPick handles POST /picks
func (h *PickHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ValidationError("invalid request body: %v", err))
		return
	}
	if req.UserID < 1 {
		writeError(w, models.ValidationError("user_id is required"))
		return
	}
	if req.Week < 1 || req.Week > 18 {
		writeError(w, models.ValidationError("invalid week: %d", req.Week))
		return
	}
	if req.Team == "" {
		writeError(w, models.ValidationError("team is required"))
		return
	}

	pick, err := h.picks.CreateOrUpdatePick(r.Context(), req.UserID, h.season, req.Week, req.GameID, req.Team, time.Now())
	if err != nil {
		h.logger.Warnf("Pick rejected for user %d week %d: %v", req.UserID, req.Week, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pick)
}

// GetStandings handles GET /standings
func (h *PickHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standings.Rankings(r.Context(), h.season)
	if err != nil {
		h.logger.Errorf("Standings load failed: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
