package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means the job source cannot be called at all.
	ErrMissingCredentials = errors.New("job source credentials not configured")
	// ErrMalformedResponse means the source answered with an unusable payload.
	ErrMalformedResponse = errors.New("malformed job source response")
)

// Source searches an external job board one page at a time. Pages start at 1.
type Source interface {
	Search(ctx context.Context, query string, page int) ([]Posting, error)
}

// Posting carries the raw fields consumed from a job board result.
type Posting struct {
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Company     named      `json:"company"`
	Description string     `json:"description"`
	RedirectURL string     `json:"redirect_url"`
	Location    named      `json:"location"`
	SalaryMin   *float64   `json:"salary_min,omitempty"`
}

type named struct {
	DisplayName string `json:"display_name"`
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// SourceError describes a failed call to the job source.
type SourceError struct {
	Page    int
	Status  int
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("job source page %d: %s", e.Page, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error { return e.Cause }
