package notifier

import (
	"context"

	"github.com/Behyna/subscription-engine/pkg/mq"
	"go.uber.org/zap"
)

type rabbitNotifier struct {
	publisher mq.Publisher
	exchange  string
	logger    *zap.Logger
}

// NewRabbitNotifier publishes events to a fanout exchange using the event name as routing key.
func NewRabbitNotifier(publisher mq.Publisher, exchange string, logger *zap.Logger) Notifier {
	return &rabbitNotifier{publisher: publisher, exchange: exchange, logger: logger}
}

func (r *rabbitNotifier) Publish(ctx context.Context, event string, payload interface{}) error {
	body, err := encode(event, payload)
	if err != nil {
		return err
	}

	if err := r.publisher.Publish(ctx, r.exchange, event, body); err != nil {
		return err
	}

	r.logger.Debug("Event published", zap.String("event", event), zap.String("exchange", r.exchange))
	return nil
}
