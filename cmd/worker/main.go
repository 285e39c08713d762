package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/workerproc"
)

func main() {
	cfg := config.Load()
	telemetry.SetOutput(os.Stdout, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.RoleWorker)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	concurrency := max(1, cfg.WorkerConcurrency)
	var wg sync.WaitGroup

	switch {
	case app.SQS != nil:
		telemetry.Info("worker.start", map[string]any{
			"backend":     "sqs",
			"queue":       app.SQS.QueueURL(),
			"concurrency": concurrency,
			"visibility":  cfg.SQSVisibilityTimeout,
		})
		pollSQS(ctx, app.SQS.API(), app.SQS.QueueURL(), app.Analyses, concurrency, cfg.SQSVisibilityTimeout, &wg)
	case app.AMQP != nil:
		telemetry.Info("worker.start", map[string]any{
			"backend":     "amqp",
			"queue":       cfg.AMQPQueue,
			"concurrency": concurrency,
		})
		if err := consumeAMQP(ctx, app.AMQP, app.Analyses, concurrency, &wg); err != nil {
			log.Fatalf("amqp consume: %v", err)
		}
	default:
		log.Fatal("QUEUE_BACKEND must be sqs or amqp")
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(cfg.ShutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func pollSQS(ctx context.Context, client sqsAPI, queueURL string, processor workerproc.Processor, concurrency, visibilitySeconds int, wg *sync.WaitGroup) {
	sem := make(chan struct{}, concurrency)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive_failed", map[string]any{"error": err.Error()})
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				// in-flight work finishes even after a shutdown signal
				handleMessage(context.WithoutCancel(ctx), client, queueURL, processor, m)
			}(msg)
		}
	}
}

func handleMessage(ctx context.Context, client sqsAPI, queueURL string, processor workerproc.Processor, msg sqstypes.Message) {
	metrics.IncWorkerReceived()
	fields := sqsFields(msg)

	outcome := process(ctx, processor, aws.ToString(msg.Body), fields)
	if outcome == workerproc.Retry {
		return
	}
	if deleteMessage(ctx, client, queueURL, msg, fields) && outcome == workerproc.Drop {
		metrics.IncWorkerDeleted()
	}
}

// process runs one payload and logs the outcome under the given fields.
func process(ctx context.Context, processor workerproc.Processor, body string, fields map[string]any) workerproc.Outcome {
	msg, outcome, err := workerproc.Handle(ctx, processor, body)
	if msg.AnalysisID != "" {
		fields["analysis_id"] = msg.AnalysisID
	}
	if msg.RequestID != "" {
		fields["request_id"] = msg.RequestID
	}
	fields["outcome"] = outcome.String()

	if err == nil {
		metrics.IncWorkerCompleted()
		telemetry.Info("worker.analysis.completed", fields)
		return outcome
	}

	metrics.IncWorkerFailed()
	fields["error"] = err.Error()
	var (
		decode workerproc.ErrDecode
		empty  workerproc.ErrEmptyBody
	)
	switch {
	case errors.As(err, &decode):
		fields["body_len"] = decode.Meta.BodyLen
		fields["body_sha256"] = decode.Meta.BodySHA
		telemetry.Error("worker.analysis.decode_failed", fields)
	case errors.As(err, &empty):
		fields["body_len"] = 0
		telemetry.Error("worker.analysis.empty_body", fields)
	default:
		telemetry.Error("worker.analysis.failed", fields)
	}
	return outcome
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, fields map[string]any) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.analysis.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.analysis.delete_failed", fields)
		return false
	}
	return true
}

func sqsFields(msg sqstypes.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := strings.TrimSpace(msg.Attributes["ApproximateReceiveCount"])
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
