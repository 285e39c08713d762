package catalog

import "strings"

// Difficulty levels, in learning order.
const (
	Beginner     = "Beginner"
	Intermediate = "Intermediate"
	Advanced     = "Advanced"
)

// Resource is one learning resource for a skill.
type Resource struct {
	ID            int64  `json:"id,omitempty" yaml:"-"`
	Skill         string `json:"skill" yaml:"skill"`
	Title         string `json:"title" yaml:"title"`
	Type          string `json:"type" yaml:"type"`
	URL           string `json:"url" yaml:"url"`
	Platform      string `json:"platform" yaml:"platform"`
	DurationWeeks int    `json:"durationWeeks,omitempty" yaml:"weeks"`
	Difficulty    string `json:"difficulty,omitempty" yaml:"difficulty"`
	Description   string `json:"description,omitempty" yaml:"description"`
}

// DifficultyRank orders difficulty labels; unknown labels sort last.
func DifficultyRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "beginner":
		return 1
	case "intermediate":
		return 2
	case "advanced":
		return 3
	default:
		return 4
	}
}
