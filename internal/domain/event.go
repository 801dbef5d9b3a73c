package domain

import (
	"encoding/json"
	"time"
)

// EventType names a realtime change notification
type EventType string

const (
	EventGameUpdated       EventType = "game_updated"
	EventRoundStarted      EventType = "round_started"
	EventTeamRegistered    EventType = "team_registered"
	EventTeamUpdated       EventType = "team_updated"
	EventRoundScoreUpdated EventType = "round_score_updated"
	EventLeaderboard       EventType = "leaderboard_changed"
	EventMemberEliminated  EventType = "member_eliminated"
)

// Event is published on a game's channel. TeamID is set for team-scoped events.
type Event struct {
	Type    EventType       `json:"type"`
	GameID  string          `json:"game_id"`
	TeamID  string          `json:"team_id,omitempty"`
	Round   int             `json:"round,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
	Origin  string          `json:"origin,omitempty"`
}

// VisibleTo reports whether a subscriber bound to teamID should receive the event.
// An empty teamID subscribes to every event of the game.
func (e *Event) VisibleTo(teamID string) bool {
	return teamID == "" || e.TeamID == "" || e.TeamID == teamID
}
