package resumes

import "skillgap-backend/internal/skills"

// Resume is a parsed upload. Skills holds unique names with the frequency
// observed in the resume text.
type Resume struct {
	Filename      string            `json:"filename"`
	FileType      string            `json:"fileType"`
	ExtractedText string            `json:"-"`
	Skills        []skills.Weighted `json:"skills"`
	UserName      string            `json:"userName,omitempty"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
}

// SetSkills replaces the skill list, dropping case-insensitive duplicates.
func (r *Resume) SetSkills(list []skills.Weighted) {
	r.Skills = skills.Dedupe(list)
}

// HasSkill reports whether the resume lists name, ignoring case.
func (r Resume) HasSkill(name string) bool {
	key := skills.Normalize(name)
	for _, s := range r.Skills {
		if s.Key() == key {
			return true
		}
	}
	return false
}

// SkillNames returns the display names in stored order.
func (r Resume) SkillNames() []string {
	return skills.Names(r.Skills)
}
