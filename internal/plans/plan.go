package plans

import "skillgap-backend/internal/catalog"

// NoGapsMessage is the whole plan when nothing is missing.
const NoGapsMessage = "Congratulations! You have all the required skills!\n\n" +
	"Consider exploring advanced topics or specializations in your field."

// Plan is a scheduled learning path.
type Plan struct {
	NoGaps          bool     `json:"noGaps"`
	TotalMissing    int      `json:"totalMissing"`
	PrioritySkills  []string `json:"prioritySkills"`
	MatchPercentage float64  `json:"matchPercentage"`
	Weeks           []Week   `json:"weeks"`
	Remaining       []string `json:"remaining,omitempty"`
	Text            string   `json:"text"`
}

// Week is one bucket of the plan. A review week has no skills.
type Week struct {
	Number     int         `json:"number"`
	Review     bool        `json:"review"`
	Skills     []SkillPlan `json:"skills,omitempty"`
	Milestones []string    `json:"milestones,omitempty"`
}

// SkillPlan holds the resources attached to one focus skill.
type SkillPlan struct {
	Skill     string             `json:"skill"`
	Generic   bool               `json:"generic,omitempty"`
	Resources []catalog.Resource `json:"resources"`
}

// FocusNames returns the week's skill names in order.
func (w Week) FocusNames() []string {
	out := make([]string, 0, len(w.Skills))
	for _, s := range w.Skills {
		out = append(out, s.Skill)
	}
	return out
}

// ScheduledWeeks counts the non-review weeks.
func (p Plan) ScheduledWeeks() int {
	n := 0
	for _, w := range p.Weeks {
		if !w.Review {
			n++
		}
	}
	return n
}
