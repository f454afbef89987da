package events

import (
	"context"
	"encoding/json"
	"fmt"

	"counselbook/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const SlotFeedChannel = "counselbook:slots"

// SlotFeed carries slot invalidation events. Listings stay the authority.
type SlotFeed interface {
	Publish(ctx context.Context, evt models.SlotEvent) error
	// Subscribe streams events until ctx is done; the channel is closed on exit.
	Subscribe(ctx context.Context) (<-chan models.SlotEvent, error)
}

type RedisSlotFeed struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisSlotFeed(client *redis.Client, logger *zap.Logger) *RedisSlotFeed {
	return &RedisSlotFeed{client: client, logger: logger}
}

func (f *RedisSlotFeed) Publish(ctx context.Context, evt models.SlotEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal slot event: %w", err)
	}
	if err := f.client.Publish(ctx, SlotFeedChannel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish slot event: %w", err)
	}
	return nil
}

func (f *RedisSlotFeed) Subscribe(ctx context.Context) (<-chan models.SlotEvent, error) {
	sub := f.client.Subscribe(ctx, SlotFeedChannel)
	// Wait for the subscription to be confirmed so no event published after return is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to slot feed: %w", err)
	}

	out := make(chan models.SlotEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt models.SlotEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					f.logger.Warn("dropping malformed slot event", zap.Error(err))
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
