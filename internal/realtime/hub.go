package realtime

import (
	"context"
	"encoding/json"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/game"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/metrics"
)

// Hub is the EventPublisher of the services. It delivers to local
// subscribers, forwards to the relay and announces each round start once.
type Hub struct {
	broker  *Broker
	relay   *Relay
	tracker *game.RoundTracker
	logger  *logger.Logger
}

// NewHub creates a hub; relay may be nil when Redis is not configured
func NewHub(broker *Broker, relay *Relay, log *logger.Logger) *Hub {
	return &Hub{
		broker:  broker,
		relay:   relay,
		tracker: game.NewRoundTracker(),
		logger:  log,
	}
}

// Publish implements service.EventPublisher
func (h *Hub) Publish(ctx context.Context, evt domain.Event) {
	metrics.EventsPublished.WithLabelValues(string(evt.Type)).Inc()
	if h.relay != nil {
		if err := h.relay.Publish(ctx, evt); err != nil {
			h.logger.WithError(err).WithField("type", string(evt.Type)).Warn("Failed to relay event")
		}
	}
	h.deliver(evt)
}

// Subscribe opens a stream of gameID's events for teamID, or for the admin when teamID is empty
func (h *Hub) Subscribe(gameID, teamID string) *Subscription {
	return h.broker.Subscribe(gameID, teamID)
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.broker.Unsubscribe(sub)
}

// Forget drops a deleted game and ends its streams
func (h *Hub) Forget(gameID string) {
	h.tracker.Forget(gameID)
	h.broker.Forget(gameID)
}

// Close ends every open stream so the HTTP server can drain
func (h *Hub) Close() {
	h.broker.Close()
}

// Run relays events from other instances until ctx is done
func (h *Hub) Run(ctx context.Context) error {
	if h.relay == nil {
		<-ctx.Done()
		return nil
	}
	return h.relay.Listen(ctx, h.deliver)
}

func (h *Hub) deliver(evt domain.Event) {
	h.broker.Publish(evt)
	if evt.Type != domain.EventGameUpdated {
		return
	}

	var g domain.GameSummary
	if err := json.Unmarshal(evt.Payload, &g); err != nil {
		h.logger.WithError(err).WithField("game_id", evt.GameID).Warn("Unreadable game_updated payload")
		return
	}
	if !h.tracker.Observe(evt.GameID, g.Status, g.CurrentRound) {
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"round":            g.CurrentRound,
		"round_name":       domain.RoundName(g.CurrentRound),
		"round_kind":       game.RoundKindFor(g.CurrentRound),
		"round_started_at": g.RoundStartedAt,
	})
	h.broker.Publish(domain.Event{
		Type:    domain.EventRoundStarted,
		GameID:  evt.GameID,
		Round:   g.CurrentRound,
		Payload: payload,
		At:      evt.At,
	})
	h.logger.WithFields(map[string]interface{}{
		"game_id": evt.GameID,
		"round":   g.CurrentRound,
	}).Info("Round started")
}
