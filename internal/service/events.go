package service

import (
	"context"
	"encoding/json"
	"time"

	"borderland-arena/internal/domain"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) {}

// newEvent builds an event; payload is marshalled as JSON
func newEvent(typ domain.EventType, gameID, teamID string, round int, payload interface{}, now time.Time) domain.Event {
	evt := domain.Event{
		Type:   typ,
		GameID: gameID,
		TeamID: teamID,
		Round:  round,
		At:     now.UTC(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			evt.Payload = data
		}
	}
	return evt
}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
