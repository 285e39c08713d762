package plans

import (
	"fmt"
	"strings"
)

const (
	heavyRule = "==========================================================="
	lightRule = "-----------------------------------------------------------"
)

// Render formats a plan as plain text.
func Render(p Plan) string {
	if p.NoGaps {
		return NoGapsMessage
	}
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n        YOUR PERSONALIZED %d-WEEK LEARNING PATH\n%s\n\n", heavyRule, len(p.Weeks), heavyRule)

	b.WriteString("Skills Gap Analysis:\n")
	fmt.Fprintf(&b, "   - Total skills to learn: %d\n", p.TotalMissing)
	fmt.Fprintf(&b, "   - Priority skills (%d weeks): %d\n", len(p.Weeks), len(p.PrioritySkills))
	fmt.Fprintf(&b, "   - Current match rate: %.1f%%\n\n", p.MatchPercentage)

	for _, w := range p.Weeks {
		renderWeek(&b, w)
	}

	fmt.Fprintf(&b, "\n%s\nADDITIONAL RECOMMENDATIONS\n%s\n\n", heavyRule, heavyRule)
	b.WriteString("Practice Tips:\n")
	b.WriteString("   - Build real projects for each skill you learn\n")
	b.WriteString("   - Contribute to open-source projects on GitHub\n")
	b.WriteString("   - Join online communities and forums\n")
	b.WriteString("   - Document your learning journey on a blog\n\n")
	b.WriteString("Goal Setting:\n")
	b.WriteString("   - Dedicate 1-2 hours daily to learning\n")
	b.WriteString("   - Complete at least one project per week\n")
	b.WriteString("   - Review and revise concepts regularly\n")
	b.WriteString("   - Track your progress and adjust as needed\n\n")

	if len(p.Remaining) > 0 {
		fmt.Fprintf(&b, "Remaining Skills: After completing this %d-week plan,\n", len(p.Weeks))
		fmt.Fprintf(&b, "   focus on: %s\n", strings.Join(p.Remaining, ", "))
	}
	return b.String()
}

func renderWeek(b *strings.Builder, w Week) {
	fmt.Fprintf(b, "%s\nWEEK %d\n%s\n\n", lightRule, w.Number, lightRule)
	if w.Review {
		b.WriteString("Review and practice skills from previous weeks!\n\n")
		return
	}

	b.WriteString("Focus Skills:\n")
	for _, s := range w.Skills {
		fmt.Fprintf(b, "   - %s\n", s.Skill)
	}
	b.WriteString("\n")

	for _, s := range w.Skills {
		fmt.Fprintf(b, "%s Learning Resources:\n", s.Skill)
		for _, r := range s.Resources {
			if r.Difficulty != "" {
				fmt.Fprintf(b, "   - %s (%s) - %s\n", r.Title, r.Platform, r.Difficulty)
			} else {
				fmt.Fprintf(b, "   - %s (%s)\n", r.Title, r.Platform)
			}
			fmt.Fprintf(b, "     -> %s\n", r.URL)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "Week %d Milestones:\n", w.Number)
	for i, m := range w.Milestones {
		fmt.Fprintf(b, "   %d. %s\n", i+1, m)
	}
	b.WriteString("\n")
}
