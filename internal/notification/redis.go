package notification

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"
)

// Channel is the pub/sub channel fulfillment consumers subscribe to.
const Channel = "salescore.events"

type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher publishes events as JSON on the shared channel.
func NewRedisPublisher(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

func (p *redisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel, payload).Err()
}
