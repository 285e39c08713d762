package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/workerproc"
)

var (
	initOnce  sync.Once
	initErr   error
	processor workerproc.Processor
)

func initApp(ctx context.Context) {
	cfg := config.Load()
	built, err := bootstrap.Build(ctx, cfg, bootstrap.RoleWorker)
	if err != nil {
		initErr = err
		return
	}
	processor = built.Analyses
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(func() { initApp(context.WithoutCancel(ctx)) })
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr.Error()})
		return events.SQSEventResponse{BatchItemFailures: allFailed(event)}, initErr
	}
	return handleEvent(ctx, processor, event), nil
}

// handleEvent reports only retryable records as failures; dropped records
// are acknowledged so SQS removes them.
func handleEvent(ctx context.Context, p workerproc.Processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncWorkerReceived()
		msg, outcome, err := workerproc.Handle(ctx, p, record.Body)
		fields := map[string]any{
			"sqs_message_id": record.MessageId,
			"analysis_id":    msg.AnalysisID,
			"outcome":        outcome.String(),
		}
		if err != nil {
			metrics.IncWorkerFailed()
			fields["error"] = err.Error()
			telemetry.Error("worker.analysis.failed", fields)
		} else {
			metrics.IncWorkerCompleted()
			telemetry.Info("worker.analysis.completed", fields)
		}
		switch outcome {
		case workerproc.Retry:
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		case workerproc.Drop:
			metrics.IncWorkerDeleted()
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func allFailed(event events.SQSEvent) []events.SQSBatchItemFailure {
	failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
	for _, record := range event.Records {
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return failures
}

func main() {
	lambda.Start(handler)
}
