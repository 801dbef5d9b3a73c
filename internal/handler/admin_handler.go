package handler

import (
	"net/http"
	"strconv"
	"strings"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/middleware"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const oauthStateCookie = "arena_oauth_state"

// AdminHandler serves the game master's sign-in and control endpoints
type AdminHandler struct {
	auth   service.AdminAuthService
	admin  service.AdminService
	logger *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(auth service.AdminAuthService, admin service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		auth:   auth,
		admin:  admin,
		logger: logger,
	}
}

// GoogleLogin handles GET /api/admin/auth/google/login
func (h *AdminHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/admin/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.LoginURL(state), http.StatusFound)
}

// GoogleCallback handles GET /api/admin/auth/google/callback
func (h *AdminHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		respondError(w, r, errors.NewAuthenticationError("Google sign-in was cancelled").WithDetails(map[string]interface{}{
			"reason": reason,
		}), h.logger)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		respondError(w, r, errors.NewAuthenticationError("Invalid OAuth state"), h.logger)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/api/admin/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})

	code := query.Get("code")
	if code == "" {
		respondError(w, r, errors.NewValidationError("Authorization code is required", nil), h.logger)
		return
	}

	token, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	h.logger.WithField("admin", token.Admin.Email).Info("Admin signed in")
	respondJSON(w, http.StatusOK, token)
}

// GoogleToken handles POST /api/admin/auth/google/token
func (h *AdminHandler) GoogleToken(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		respondError(w, r, errors.NewValidationError("id_token is required", nil), h.logger)
		return
	}

	token, err := h.auth.SignInWithIDToken(r.Context(), req.IDToken)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	h.logger.WithField("admin", token.Admin.Email).Info("Admin signed in")
	respondJSON(w, http.StatusOK, token)
}

// ListGames handles GET /api/admin/games
func (h *AdminHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.admin.ListGames(r.Context())
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// CreateGame handles POST /api/admin/games
func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	var email string
	if admin, ok := middleware.AdminFromContext(r.Context()); ok {
		email = admin.Email
	}

	g, err := h.admin.CreateGame(r.Context(), email, &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

// GetGame handles GET /api/admin/games/{gameID}
func (h *AdminHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.admin.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// DeleteGame handles DELETE /api/admin/games/{gameID}
func (h *AdminHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartRound handles POST /api/admin/games/{gameID}/rounds/{round}/start
func (h *AdminHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		respondError(w, r, errors.NewValidationError("Round must be a number", map[string]interface{}{
			"round": chi.URLParam(r, "round"),
		}), h.logger)
		return
	}

	g, err := h.admin.StartRound(r.Context(), chi.URLParam(r, "gameID"), round)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// EndRound handles POST /api/admin/games/{gameID}/rounds/end
func (h *AdminHandler) EndRound(w http.ResponseWriter, r *http.Request) {
	g, err := h.admin.EndRound(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// FinishGame handles POST /api/admin/games/{gameID}/finish
func (h *AdminHandler) FinishGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.admin.FinishGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// ListTeams handles GET /api/admin/games/{gameID}/teams
func (h *AdminHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.admin.ListTeams(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// StrikeTeam handles POST /api/admin/teams/{teamID}/strike
func (h *AdminHandler) StrikeTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.admin.StrikeTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// ClearTeam handles POST /api/admin/teams/{teamID}/clear
func (h *AdminHandler) ClearTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.admin.ClearTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// EliminateMember handles POST /api/admin/games/{gameID}/members/{memberID}/eliminate
func (h *AdminHandler) EliminateMember(w http.ResponseWriter, r *http.Request) {
	elim, err := h.admin.EliminateMember(r.Context(), chi.URLParam(r, "gameID"), chi.URLParam(r, "memberID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, elim)
}

// ListEliminations handles GET /api/admin/games/{gameID}/eliminations
func (h *AdminHandler) ListEliminations(w http.ResponseWriter, r *http.Request) {
	elims, err := h.admin.ListEliminations(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"eliminations": elims})
}

// ListQuestions handles GET /api/admin/questions?round=&suit=
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	var filter domain.QuestionFilter
	if raw := r.URL.Query().Get("round"); raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, errors.NewValidationError("round must be a number", map[string]interface{}{
				"round": raw,
			}), h.logger)
			return
		}
		filter.RoundNumber = round
	}
	filter.Suit = domain.Suit(strings.ToLower(r.URL.Query().Get("suit")))

	questions, err := h.admin.ListQuestions(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// CreateQuestion handles POST /api/admin/questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := decodeJSON(w, r, &q); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	created, err := h.admin.CreateQuestion(r.Context(), &q)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateQuestion handles PUT /api/admin/questions/{questionID}
func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := decodeJSON(w, r, &q); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	updated, err := h.admin.UpdateQuestion(r.Context(), chi.URLParam(r, "questionID"), &q)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteQuestion handles DELETE /api/admin/questions/{questionID}
func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
