package main

import (
	"context"
	"errors"
	"sync"

	"github.com/streadway/amqp"

	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/workerproc"
)

func consumeAMQP(ctx context.Context, client *queue.AMQPClient, processor workerproc.Processor, concurrency int, wg *sync.WaitGroup) error {
	deliveries, err := client.Consume(concurrency)
	if err != nil {
		return err
	}
	sem := make(chan struct{}, concurrency)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			select {
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return nil
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handleDelivery(context.WithoutCancel(ctx), processor, d)
			}(d)
		}
	}
}

// handleDelivery acks completed and dropped messages. Retries are requeued
// once; a redelivered failure is rejected so the broker can dead-letter it.
func handleDelivery(ctx context.Context, processor workerproc.Processor, d amqp.Delivery) {
	metrics.IncWorkerReceived()
	fields := map[string]any{
		"amqp_message_id": d.MessageId,
		"redelivered":     d.Redelivered,
	}

	var err error
	switch process(ctx, processor, string(d.Body), fields) {
	case workerproc.Completed:
		err = d.Ack(false)
	case workerproc.Drop:
		if err = d.Ack(false); err == nil {
			metrics.IncWorkerDeleted()
		}
	default:
		err = d.Nack(false, !d.Redelivered)
	}
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.analysis.ack_failed", fields)
	}
}
