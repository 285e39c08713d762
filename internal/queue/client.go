package queue

import "context"

// Backend names accepted by QUEUE_BACKEND.
const (
	BackendSQS  = "sqs"
	BackendAMQP = "amqp"
)

// Client hands an analysis to the worker fleet. Send returns once the
// broker has accepted the message.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

var (
	_ Client = (*SQSClient)(nil)
	_ Client = (*AMQPClient)(nil)
)
