package domain

import "time"

const (
	MinTeamMembers = 2
	MaxTeamMembers = 6
)

// Team represents a team registered in a game
type Team struct {
	ID             string    `json:"id"`
	GameID         string    `json:"game_id"`
	Name           string    `json:"name"`
	TotalScore     int       `json:"total_score"`
	IsDisqualified bool      `json:"is_disqualified"`
	BanCount       int       `json:"ban_count"`
	CreatedAt      time.Time `json:"created_at"`
	Members        []Member  `json:"members,omitempty"`
}

// Member is an operative of a team
type Member struct {
	ID              string `json:"id"`
	TeamID          string `json:"team_id"`
	Name            string `json:"name"`
	IsEliminated    bool   `json:"is_eliminated"`
	EliminatedRound *int   `json:"eliminated_round,omitempty"`
}

// Elimination records that a member was removed from play after a round
type Elimination struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	MemberID    string    `json:"member_id"`
	RoundNumber int       `json:"round_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterTeamRequest is the body of POST /api/games/{gameID}/teams
type RegisterTeamRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// RegisterTeamResponse carries the new team and its session
type RegisterTeamResponse struct {
	Session *Session `json:"session"`
	Team    *Team    `json:"team"`
}

// ViolationRequest is the body of POST /api/play/violation
type ViolationRequest struct {
	Reason string `json:"reason"`
}
