package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const defaultSQSRegion = "us-east-1"

type sqsSender interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSClient publishes analysis messages to one SQS queue.
type SQSClient struct {
	client   *sqs.Client
	sender   sqsSender
	queueURL string
}

// NewSQSClient loads the default AWS credential chain for region.
func NewSQSClient(ctx context.Context, queueURL, region string) (*SQSClient, error) {
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, errors.New("SQS_QUEUE_URL is required for the sqs backend")
	}
	if strings.TrimSpace(region) == "" {
		region = defaultSQSRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := sqs.NewFromConfig(cfg)
	return &SQSClient{client: client, sender: client, queueURL: queueURL}, nil
}

// API exposes the SDK client for the worker's receive loop.
func (s *SQSClient) API() *sqs.Client { return s.client }

func (s *SQSClient) QueueURL() string { return s.queueURL }

// Send publishes msg. The analysis id and payload version travel as message
// attributes so they show up in the console without decoding the body.
func (s *SQSClient) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message analysis=%s: %w", msg.AnalysisID, err)
	}
	version := msg.Version
	if version == 0 {
		version = MessageVersion
	}

	_, err = s.sender.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"analysisId": {DataType: aws.String("String"), StringValue: aws.String(msg.AnalysisID)},
			"version":    {DataType: aws.String("Number"), StringValue: aws.String(strconv.Itoa(version))},
		},
	})
	if err != nil {
		return fmt.Errorf("sqs send analysis=%s: %w", msg.AnalysisID, err)
	}
	return nil
}
