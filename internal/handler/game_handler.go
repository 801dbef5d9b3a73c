package handler

import (
	"net/http"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// GameHandler serves the public endpoints used before a team has a session
type GameHandler struct {
	teams       service.TeamService
	leaderboard service.LeaderboardService
	logger      *logger.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(teams service.TeamService, leaderboard service.LeaderboardService, logger *logger.Logger) *GameHandler {
	return &GameHandler{
		teams:       teams,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Join handles POST /api/games/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req domain.JoinGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	summary, err := h.teams.JoinGame(r.Context(), req.JoinCode)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// RegisterTeam handles POST /api/games/{gameID}/teams
func (h *GameHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	resp, err := h.teams.RegisterTeam(r.Context(), chi.URLParam(r, "gameID"), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"game_id": resp.Team.GameID,
		"team_id": resp.Team.ID,
	}).Info("Team registered")
	respondJSON(w, http.StatusCreated, resp)
}

// Leaderboard handles GET /api/games/{gameID}/leaderboard
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboard.Get(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, board)
}
