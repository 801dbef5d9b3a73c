package handler

import (
	"net/http"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/middleware"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
)

// PlayHandler serves the endpoints of a team holding a session
type PlayHandler struct {
	teams   service.TeamService
	play    service.PlayService
	sandbox service.SandboxService
	logger  *logger.Logger
}

// NewPlayHandler creates a new play handler
func NewPlayHandler(teams service.TeamService, play service.PlayService, sandbox service.SandboxService, logger *logger.Logger) *PlayHandler {
	return &PlayHandler{
		teams:   teams,
		play:    play,
		sandbox: sandbox,
		logger:  logger,
	}
}

// session returns the team session or writes an authentication error
func (h *PlayHandler) session(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewAuthenticationError("Session required"), h.logger)
		return nil, false
	}
	return session, true
}

// GetSession handles GET /api/play/session
func (h *PlayHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	info, err := h.teams.SessionInfo(r.Context(), session)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// LeaveGame handles DELETE /api/play/session
func (h *PlayHandler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.teams.LeaveGame(r.Context(), session); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Round handles GET /api/play/round
func (h *PlayHandler) Round(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.play.RoundView(r.Context(), session)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, view)
}

// SelectOperative handles POST /api/play/operative
func (h *PlayHandler) SelectOperative(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req domain.SelectOperativeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	view, err := h.play.SelectOperative(r.Context(), session, req.MemberID)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SelectSuit handles POST /api/play/suit
func (h *PlayHandler) SelectSuit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req domain.SelectSuitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	view, err := h.play.SelectSuit(r.Context(), session, req.Suit)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SubmitAnswer handles POST /api/play/answer
func (h *PlayHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req domain.AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	result, err := h.play.SubmitAnswer(r.Context(), session, &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ReportViolation handles POST /api/play/violation
func (h *PlayHandler) ReportViolation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req domain.ViolationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	team, err := h.play.ReportViolation(r.Context(), session, req.Reason)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// Execute handles POST /api/play/execute. The output is shown to the team and never graded.
func (h *PlayHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}

	var req domain.ExecuteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	result, err := h.sandbox.Execute(r.Context(), &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
