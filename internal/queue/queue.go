// Package queue carries push notifications over RabbitMQ. Every user has a
// durable queue with its own dead-letter queue.
package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/domain"
)

// Publisher publishes notification messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg NotificationMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg NotificationMessage) error

// Consumer consumes notification messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

const (
	queuePrefix = "notifications"
	dlqPrefix   = "dlq"

	// queueMaxPriority is the RabbitMQ x-max-priority value for user queues.
	queueMaxPriority int32 = 3
)

// QueueName returns the push queue of a user, e.g. notifications.42.
func QueueName(userID int) string {
	return fmt.Sprintf("%s.%d", queuePrefix, userID)
}

// DLQName returns the dead-letter queue for a push queue, e.g.
// dlq.notifications.42.
func DLQName(queue string) string {
	return fmt.Sprintf("%s.%s", dlqPrefix, strings.TrimSpace(queue))
}

// PriorityValue maps domain priority to RabbitMQ message priority.
func PriorityValue(priority domain.Priority) uint8 {
	switch priority {
	case domain.PriorityHigh:
		return 3
	case domain.PriorityNormal:
		return 2
	case domain.PriorityLow:
		return 1
	default:
		return 0
	}
}
