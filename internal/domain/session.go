package domain

import "time"

// Session is the explicit context of a team playing a game.
// Created at team registration and cleared when the team leaves.
type Session struct {
	GameID    string    `json:"game_id"`
	TeamID    string    `json:"team_id"`
	JoinCode  string    `json:"join_code"`
	TokenID   string    `json:"-"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionInfo is returned by GET /api/play/session
type SessionInfo struct {
	Session *Session     `json:"session"`
	Team    *Team        `json:"team"`
	Game    *GameSummary `json:"game"`
}

// AdminProfile is the identity of a signed-in game master, taken from Google
type AdminProfile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

// AdminToken is issued after a successful admin sign-in
type AdminToken struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     *AdminProfile `json:"admin"`
}

// AdminTokenRequest is the body of POST /api/admin/auth/google/token
type AdminTokenRequest struct {
	IDToken string `json:"id_token"`
}
