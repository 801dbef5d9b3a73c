package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/redis"
	"github.com/google/uuid"
)

// Relay fans events out to the other API instances over Redis pub/sub.
// Each instance tags what it sends with its origin and ignores its own echo.
type Relay struct {
	redis  *redis.Client
	origin string
	logger *logger.Logger
}

func NewRelay(client *redis.Client, log *logger.Logger) *Relay {
	return &Relay{
		redis:  client,
		origin: uuid.NewString(),
		logger: log,
	}
}

// Origin identifies this instance on the relay channels
func (r *Relay) Origin() string {
	return r.origin
}

// Publish sends evt on the game's channel
func (r *Relay) Publish(ctx context.Context, evt domain.Event) error {
	evt.Origin = r.origin
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := r.redis.Publish(ctx, r.redis.KeyBuilder.ChannelGameEvents(evt.GameID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Listen delivers events published by other instances until ctx is done
func (r *Relay) Listen(ctx context.Context, deliver func(domain.Event)) error {
	pattern := r.redis.KeyBuilder.ChannelGameEventsPattern()
	ps := r.redis.PSubscribe(ctx, pattern)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
	}
	r.logger.WithFields(map[string]interface{}{
		"pattern": pattern,
		"origin":  r.origin,
	}).Info("Realtime relay listening")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				r.logger.WithError(err).WithField("channel", msg.Channel).Warn("Dropping malformed relay message")
				continue
			}
			if evt.Origin == r.origin {
				continue
			}
			deliver(evt)
		}
	}
}
