package notification

import (
	"context"
	"fmt"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/queue"
	"go.uber.org/zap"
)

// QueueSource delivers notifications pushed to the user's RabbitMQ queue.
type QueueSource struct {
	consumer queue.Consumer
	userID   int
	role     domain.UserType
	logger   *zap.Logger
}

var _ Source = (*QueueSource)(nil)

func NewQueueSource(consumer queue.Consumer, userID int, role domain.UserType, logger *zap.Logger) (*QueueSource, error) {
	if consumer == nil {
		return nil, fmt.Errorf("queue consumer is required")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QueueSource{
		consumer: consumer,
		userID:   userID,
		role:     role,
		logger:   logger,
	}, nil
}

func (s *QueueSource) Run(ctx context.Context, deliver DeliverFunc) error {
	if deliver == nil {
		return fmt.Errorf("deliver func is required")
	}
	return s.consumer.Consume(ctx, queue.QueueName(s.userID), s.handler(deliver))
}

// handler acks messages meant for someone else or for another role instead
// of dead-lettering them; they are not errors.
func (s *QueueSource) handler(deliver DeliverFunc) queue.MessageHandler {
	return func(ctx context.Context, msg queue.NotificationMessage) error {
		if msg.UserID != s.userID {
			s.logger.Warn("dropping push for another user",
				zap.Int("userId", msg.UserID),
				zap.String("notificationId", msg.Notification.ID),
			)
			return nil
		}
		if !roleAccepts(s.role, msg.Notification.Type) {
			return nil
		}
		return deliver(ctx, msg.Notification, SourcePush)
	}
}
