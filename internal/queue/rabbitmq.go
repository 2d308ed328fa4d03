package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dlxExchangeName  = "ustamapp.dlx"
	reconnectBackoff = time.Second
	maxBackoff       = 30 * time.Second
	dialTimeout      = 15 * time.Second
)

// RabbitMQ manages RabbitMQ connectivity and topology declaration.
type RabbitMQ struct {
	url string

	mu          sync.RWMutex
	reconnectMu sync.Mutex
	conn        *amqp.Connection
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}

	r := &RabbitMQ{url: url}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := r.ensureConnected(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	return conn.Close()
}

// Ping reports whether the broker is reachable, reconnecting if needed.
func (r *RabbitMQ) Ping(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("rabbitmq is not initialized")
	}
	return r.ensureConnected(ctx)
}

// channel opens a channel with queue and its dead-letter queue declared.
func (r *RabbitMQ) channel(ctx context.Context, queue string) (*amqp.Channel, error) {
	if err := r.ensureConnected(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()

	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is closed")
	}

	ch, err := conn.Channel()
	if err != nil {
		if errReconnect := r.reconnectWithBackoff(ctx); errReconnect != nil {
			return nil, errReconnect
		}

		r.mu.RLock()
		conn = r.conn
		r.mu.RUnlock()

		ch, err = conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("failed to create rabbitmq channel after reconnect: %w", err)
		}
	}

	if err := declareTopology(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return ch, nil
}

func (r *RabbitMQ) ensureConnected(ctx context.Context) error {
	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()

	if conn != nil && !conn.IsClosed() {
		return nil
	}

	return r.reconnectWithBackoff(ctx)
}

func (r *RabbitMQ) reconnectWithBackoff(ctx context.Context) error {
	r.reconnectMu.Lock()
	defer r.reconnectMu.Unlock()

	r.mu.RLock()
	conn := r.conn
	r.mu.RUnlock()
	if conn != nil && !conn.IsClosed() {
		return nil
	}

	wait := reconnectBackoff
	for {
		newConn, err := amqp.Dial(r.url)
		if err == nil {
			r.mu.Lock()
			r.conn = newConn
			r.mu.Unlock()
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rabbitmq reconnect canceled: %w", ctx.Err())
		case <-time.After(wait):
		}

		wait = nextBackoff(wait)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// topology lists the declarations made for a push queue.
type topology struct {
	queue      string
	dlq        string
	routingKey string
	args       amqp.Table
}

func queueTopology(queue string) topology {
	return topology{
		queue:      queue,
		dlq:        DLQName(queue),
		routingKey: queue,
		args: amqp.Table{
			"x-dead-letter-exchange":    dlxExchangeName,
			"x-dead-letter-routing-key": queue,
			"x-max-priority":            queueMaxPriority,
		},
	}
}

func declareTopology(ch *amqp.Channel, queue string) error {
	if strings.TrimSpace(queue) == "" {
		return fmt.Errorf("queue name is required")
	}

	if err := ch.ExchangeDeclare(dlxExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dlx exchange: %w", err)
	}

	topo := queueTopology(queue)

	if _, err := ch.QueueDeclare(topo.dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dlq %q: %w", topo.dlq, err)
	}
	if err := ch.QueueBind(topo.dlq, topo.routingKey, dlxExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dlq %q: %w", topo.dlq, err)
	}
	if _, err := ch.QueueDeclare(topo.queue, true, false, false, false, topo.args); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", topo.queue, err)
	}

	return nil
}
