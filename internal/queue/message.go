package queue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageVersion is the payload version written by this build.
const MessageVersion = 1

// ErrUnsupportedVersion is returned for payloads written by a newer producer.
var ErrUnsupportedVersion = errors.New("unsupported message version")

// Message asks a worker to analyze an upload that is already in the object
// store.
type Message struct {
	AnalysisID  string `json:"analysisId"`
	RequestID   string `json:"requestId"`
	UserID      string `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	FileKey     string `json:"fileKey"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Query       string `json:"query"`
	MaxResults  int    `json:"maxResults,omitempty"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message. A zero
// Version is stamped with MessageVersion.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > MessageVersion {
		return msg, fmt.Errorf("%w: %d", ErrUnsupportedVersion, msg.Version)
	}
	return msg, nil
}
