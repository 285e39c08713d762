package gap

import (
	"fmt"
	"strings"

	"skillgap-backend/internal/jobs"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/skills"
)

// Scoring methods reported on a Result.
const (
	MethodBlended = "blended"
	MethodOverlap = "overlap"
	MethodEmpty   = "empty"
)

// Result is the outcome of one analysis. MatchingSkills and MissingSkills
// partition the skill universe of AnalyzedJobs; Frequency on both is the
// number of jobs requiring the skill.
type Result struct {
	Resume            resumes.Resume    `json:"resume"`
	AnalyzedJobs      []jobs.Job        `json:"analyzedJobs"`
	MatchingSkills    []skills.Weighted `json:"matchingSkills"`
	MissingSkills     []skills.Weighted `json:"missingSkills"`
	MatchPercentage   float64           `json:"matchPercentage"`
	OverlapPercentage float64           `json:"overlapPercentage"`
	ClusterPercentage float64           `json:"clusterPercentage"`
	Method            string            `json:"method"`
	TotalJobsAnalyzed int               `json:"totalJobsAnalyzed"`
	LearningPath      string            `json:"learningPath,omitempty"`
}

// SimpleMatchPercentage is matching / (matching + missing) * 100. It is kept
// for display next to the blended MatchPercentage, which is authoritative.
func (r Result) SimpleMatchPercentage() float64 {
	total := len(r.MatchingSkills) + len(r.MissingSkills)
	if total == 0 {
		return 0
	}
	return float64(len(r.MatchingSkills)) / float64(total) * 100
}

func (r Result) MatchingNames() string { return joinNames(r.MatchingSkills) }
func (r Result) MissingNames() string  { return joinNames(r.MissingSkills) }

// Summary is a one-line description of the analysis.
func (r Result) Summary() string {
	return fmt.Sprintf("Analyzed %d jobs | Match: %.1f%% | Matching Skills: %d | Skills to Learn: %d",
		r.TotalJobsAnalyzed, r.MatchPercentage, len(r.MatchingSkills), len(r.MissingSkills))
}

// HasResults reports whether any job was analyzed and produced skills.
func (r Result) HasResults() bool {
	return r.TotalJobsAnalyzed > 0 && (len(r.MatchingSkills) > 0 || len(r.MissingSkills) > 0)
}

func joinNames(list []skills.Weighted) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(skills.Names(list), ", ")
}
