package analyses

import (
	"strings"

	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/plans"
)

// Status values reported for analyses.
const (
	StatusQueued    = "queued"
	StatusCompleted = "completed"
)

// FileRequest asks for an analysis of an uploaded resume.
type FileRequest struct {
	UserID      string
	UserName    string `validate:"max=100"`
	FileName    string `validate:"required,max=255"`
	ContentType string
	Data        []byte
	Query       string `validate:"required,min=2,max=100"`
	MaxResults  int    `validate:"omitempty,min=1,max=200"`
}

func (r *FileRequest) normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.FileName = strings.TrimSpace(r.FileName)
	r.Query = strings.TrimSpace(r.Query)
}

// TextRequest asks for an analysis of pasted resume text.
type TextRequest struct {
	UserID     string `json:"-"`
	UserName   string `json:"userName" validate:"max=100"`
	FileName   string `json:"fileName" validate:"max=255"`
	Text       string `json:"text" validate:"required,max=200000"`
	Query      string `json:"query" validate:"required,min=2,max=100"`
	MaxResults int    `json:"maxResults" validate:"omitempty,min=1,max=200"`
}

func (r *TextRequest) normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.FileName = strings.TrimSpace(r.FileName)
	r.Text = strings.TrimSpace(r.Text)
	r.Query = strings.TrimSpace(r.Query)
	if r.FileName == "" {
		r.FileName = pastedFileName
	}
}

// Report is the outcome of a synchronous analysis.
type Report struct {
	AnalysisID            string     `json:"analysisId"`
	Status                string     `json:"status"`
	Summary               string     `json:"summary"`
	SimpleMatchPercentage float64    `json:"simpleMatchPercentage"`
	Result                gap.Result `json:"result"`
	Plan                  plans.Plan `json:"plan"`
	Persisted             bool       `json:"persisted"`
}

// Queued acknowledges an analysis handed to the worker.
type Queued struct {
	AnalysisID string `json:"analysisId"`
	Status     string `json:"status"`
	FileKey    string `json:"-"`
}

// runInput carries what the pipeline needs besides the parsed resume.
type runInput struct {
	id         string
	userID     string
	userName   string
	fileName   string
	query      string
	maxResults int
}
