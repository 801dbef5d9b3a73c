package domain

import (
	"fmt"
	"time"
)

// Rounds is the number of rounds in a game
const Rounds = 4

// DefaultGameName is used when an admin creates a game without a name
const DefaultGameName = "Borderland Arena"

// GameStatus is the lifecycle state of a game
type GameStatus string

const (
	StatusWaiting       GameStatus = "waiting"
	StatusRound1        GameStatus = "round1"
	StatusRound2        GameStatus = "round2"
	StatusRound3        GameStatus = "round3"
	StatusRound4        GameStatus = "round4"
	StatusBetweenRounds GameStatus = "between_rounds"
	StatusFinished      GameStatus = "finished"
)

// RoundStatus returns the status for an active round n.
func RoundStatus(n int) GameStatus {
	return GameStatus(fmt.Sprintf("round%d", n))
}

// RoundNumber returns n for a roundN status and 0 for every other status.
func (s GameStatus) RoundNumber() int {
	switch s {
	case StatusRound1:
		return 1
	case StatusRound2:
		return 2
	case StatusRound3:
		return 3
	case StatusRound4:
		return 4
	}
	return 0
}

// IsRound reports whether a round is being played.
func (s GameStatus) IsRound() bool {
	return s.RoundNumber() > 0
}

// Valid reports whether s is a known status.
func (s GameStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusBetweenRounds, StatusFinished:
		return true
	}
	return s.IsRound()
}

var roundNames = map[int]string{
	1: "Entry Game",
	2: "Mind Trap",
	3: "Betrayal Stage",
	4: "Final Showdown",
}

// RoundName returns the display name of round n.
func RoundName(n int) string {
	return roundNames[n]
}

// Game represents one competition run by an admin
type Game struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	AdminEmail     string     `json:"admin_email,omitempty"`
	JoinCode       string     `json:"join_code"`
	Status         GameStatus `json:"status"`
	CurrentRound   int        `json:"current_round"`
	RoundStartedAt *time.Time `json:"round_started_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// GameSummary is the public view of a game returned to joining teams
type GameSummary struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	JoinCode       string     `json:"join_code"`
	Status         GameStatus `json:"status"`
	CurrentRound   int        `json:"current_round"`
	RoundName      string     `json:"round_name,omitempty"`
	RoundStartedAt *time.Time `json:"round_started_at,omitempty"`
}

// Summary returns the public view of the game.
func (g *Game) Summary() *GameSummary {
	return &GameSummary{
		ID:             g.ID,
		Name:           g.Name,
		JoinCode:       g.JoinCode,
		Status:         g.Status,
		CurrentRound:   g.CurrentRound,
		RoundName:      RoundName(g.CurrentRound),
		RoundStartedAt: g.RoundStartedAt,
	}
}

// JoinGameRequest is the body of POST /api/games/join
type JoinGameRequest struct {
	JoinCode string `json:"join_code"`
}

// CreateGameRequest is the body of POST /api/admin/games
type CreateGameRequest struct {
	Name string `json:"name"`
}
