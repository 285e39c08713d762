package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an analysis does not exist.
var ErrNotFound = errors.New("analysis not found")

// Analysis is one stored analysis run. Skill lists are stored as display
// strings, "None" when empty.
type Analysis struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId,omitempty"`
	UserName              string    `json:"userName,omitempty"`
	ResumeFilename        string    `json:"resumeFilename"`
	Query                 string    `json:"query,omitempty"`
	MatchingSkills        string    `json:"matchingSkills"`
	MissingSkills         string    `json:"missingSkills"`
	MatchPercentage       float64   `json:"matchPercentage"`
	JobsAnalyzed          int       `json:"jobsAnalyzed"`
	AnalyzedAt            time.Time `json:"analyzedAt"`
	LearningPathGenerated bool      `json:"learningPathGenerated"`
}

// Week is one persisted week of a learning path.
type Week struct {
	AnalysisID string    `json:"analysisId"`
	WeekNumber int       `json:"weekNumber"`
	SkillFocus string    `json:"skillFocus"`
	Resources  string    `json:"resources"`
	Milestones string    `json:"milestones"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListFilter narrows ListAnalyses. A zero Limit means no limit.
type ListFilter struct {
	UserID string
	Limit  int
	Offset int
}
