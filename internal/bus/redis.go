package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gilshabo/tic-tac-two/internal/entity"
)

// RedisBus broadcasts change envelopes over per-room pub/sub channels.
// Delivery is best-effort, at-least-once for connected subscribers; there is
// no replay, a late subscriber catches up via its next read of the record.
type RedisBus struct {
	logger   *slog.Logger
	client   *redis.Client
	originID string
}

func NewRedisBus(logger *slog.Logger, client *redis.Client) *RedisBus {
	return &RedisBus{
		logger:   logger.With("component", "bus"),
		client:   client,
		originID: uuid.NewString(),
	}
}

// OriginID identifies this process on the bus.
func (that *RedisBus) OriginID() string {
	return that.originID
}

func (that *RedisBus) Publish(ctx context.Context, room *entity.Room) error {
	envelope := Envelope{
		Type:     envelopeTypeState,
		State:    room,
		OriginID: that.originID,
		EventID:  uuid.NewString(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("could not marshal envelope: %w", err)
	}

	if err = that.client.Publish(ctx, channelFor(room.ID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish state for room %s: %w", room.ID, err)
	}

	return nil
}

// Subscribe attaches to the room's channel and dispatches foreign envelopes
// to the handler. Malformed payloads are dropped with a log line; envelopes
// published by this process are dropped silently. The subscription lives
// until the context is canceled, which in practice is the process lifetime.
func (that *RedisBus) Subscribe(ctx context.Context, roomID string, handler Handler) error {
	log := that.logger.With("method", "Subscribe", "roomID", roomID)

	sub := that.client.Subscribe(ctx, channelFor(roomID))

	// wait for the subscription confirmation so no envelope published
	// after this call returns can be missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	go func() {
		for msg := range sub.Channel() {
			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Warn("dropping malformed envelope", "error", err)
				continue
			}

			if envelope.State == nil {
				log.Warn("dropping envelope without state")
				continue
			}

			if envelope.OriginID == that.originID {
				continue
			}

			handler(envelope.State)
		}
	}()

	log.Info("subscribed to room channel")

	return nil
}

func channelFor(roomID string) string {
	return "room:" + roomID + ":events"
}
