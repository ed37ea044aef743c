package notifier

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPublisher is the subset of *redis.Client used for broadcasting.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type redisNotifier struct {
	client  RedisPublisher
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(client RedisPublisher, channel string, logger *zap.Logger) Notifier {
	return &redisNotifier{client: client, channel: channel, logger: logger}
}

func (r *redisNotifier) Publish(ctx context.Context, event string, payload interface{}) error {
	body, err := encode(event, payload)
	if err != nil {
		return err
	}

	receivers, err := r.client.Publish(ctx, r.channel, body).Result()
	if err != nil {
		return err
	}

	r.logger.Debug("Event published",
		zap.String("event", event),
		zap.String("channel", r.channel),
		zap.Int64("receivers", receivers))
	return nil
}
