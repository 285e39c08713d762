package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"
)

// AMQPClient publishes to and consumes from a durable RabbitMQ queue.
type AMQPClient struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	mu    sync.Mutex
}

// NewAMQPClient dials url and declares queue as durable.
func NewAMQPClient(url, queue string) (*AMQPClient, error) {
	url = strings.TrimSpace(url)
	queue = strings.TrimSpace(queue)
	if url == "" || queue == "" {
		return nil, errors.New("amqp url and queue are required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}
	return &AMQPClient{conn: conn, ch: ch, queue: queue}, nil
}

// Send publishes msg as a persistent JSON message.
func (a *AMQPClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode amqp message: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.ch.Publish("", a.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.AnalysisID,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Consume starts a manual-ack consumer limited to prefetch unacked
// deliveries.
func (a *AMQPClient) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if prefetch > 0 {
		if err := a.ch.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("amqp qos: %w", err)
		}
	}
	deliveries, err := a.ch.Consume(a.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("amqp consume %s: %w", a.queue, err)
	}
	return deliveries, nil
}

// Close tears down the channel and connection.
func (a *AMQPClient) Close() error {
	chErr := a.ch.Close()
	connErr := a.conn.Close()
	return errors.Join(chErr, connErr)
}
