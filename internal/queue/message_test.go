package queue

import (
	"errors"
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		AnalysisID:  "analysis-123",
		RequestID:   "request-456",
		UserID:      "guest:abc",
		FileKey:     "owner/cv.pdf",
		FileName:    "cv.pdf",
		ContentType: "application/pdf",
		Query:       "data scientist",
		MaxResults:  20,
		EnqueuedAt:  "2026-01-30T22:00:00Z",
		Version:     1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestEncodeStampsVersion(t *testing.T) {
	payload, err := EncodeMessage(Message{AnalysisID: "a"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.Version != MessageVersion {
		t.Fatalf("version = %d, want %d", got.Version, MessageVersion)
	}
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"analysisId":"a","version":2}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{"analysisId":`)); err == nil {
		t.Fatal("expected decode error")
	}
}
