package jobs

import "skillgap-backend/internal/skills"

// Job is a single posting annotated with the skills it requires.
type Job struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	Location       string         `json:"location,omitempty"`
	Description    string         `json:"description,omitempty"`
	URL            string         `json:"url,omitempty"`
	Salary         float64        `json:"salary,omitempty"`
	RequiredSkills []skills.Skill `json:"requiredSkills"`
}

// AddRequiredSkill appends s unless a skill with the same name is present.
func (j *Job) AddRequiredSkill(s skills.Skill) {
	if s.Key() == "" || j.Requires(s.Name) {
		return
	}
	j.RequiredSkills = append(j.RequiredSkills, s)
}

// Requires reports whether the job lists the named skill, ignoring case.
func (j Job) Requires(name string) bool {
	key := skills.Normalize(name)
	for _, s := range j.RequiredSkills {
		if s.Key() == key {
			return true
		}
	}
	return false
}
