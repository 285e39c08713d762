package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"skillgap-backend/internal/analyses"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/shared/telemetry"
)

// Processor runs one queued analysis.
type Processor interface {
	ProcessAnalysis(ctx context.Context, msg queue.Message) error
}

// Outcome tells the transport what to do with a delivery.
type Outcome int

const (
	// Completed messages are acknowledged.
	Completed Outcome = iota
	// Drop removes a message that can never succeed.
	Drop
	// Retry leaves the message for redelivery.
	Retry
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Drop:
		return "drop"
	default:
		return "retry"
	}
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingField indicates a message without a required field.
type ErrMissingField struct {
	Meta      MessageMeta
	RequestID string
	Field     string
}

func (e ErrMissingField) Error() string { return "missing " + e.Field }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	AnalysisID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process analysis"
	}
	return "process analysis: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.AnalysisID) == "" {
		return msg, meta, ErrMissingField{Meta: meta, RequestID: msg.RequestID, Field: "analysisId"}
	}
	if strings.TrimSpace(msg.FileKey) == "" {
		return msg, meta, ErrMissingField{Meta: meta, RequestID: msg.RequestID, Field: "fileKey"}
	}
	return msg, meta, nil
}

// Handle parses body, runs it through p and classifies the result. The
// returned message is as complete as parsing got.
func Handle(ctx context.Context, p Processor, body string) (queue.Message, Outcome, error) {
	if p == nil {
		return queue.Message{}, Retry, errors.New("analysis processor not configured")
	}

	msg, _, err := ParseMessage(body)
	if err != nil {
		return msg, Classify(err), err
	}

	if err := p.ProcessAnalysis(telemetry.WithRequestID(ctx, msg.RequestID), msg); err != nil {
		perr := ErrProcess{AnalysisID: msg.AnalysisID, RequestID: msg.RequestID, Err: err}
		return msg, Classify(perr), perr
	}
	return msg, Completed, nil
}

// Classify maps a Handle error to an outcome. Payloads from a newer
// producer are left for a newer worker; other malformed payloads and
// unprocessable analyses are dropped.
func Classify(err error) Outcome {
	if err == nil {
		return Completed
	}
	if errors.Is(err, queue.ErrUnsupportedVersion) {
		return Retry
	}
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		missing ErrMissingField
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &missing):
		return Drop
	case errors.Is(err, analyses.ErrUnprocessable):
		return Drop
	default:
		return Retry
	}
}
