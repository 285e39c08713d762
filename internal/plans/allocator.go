package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillgap-backend/internal/catalog"
	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/history"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
)

const (
	DefaultWeeks             = 4
	DefaultSkillsPerWeek     = 2
	DefaultResourcesPerSkill = 2
	remainingLimit           = 5
	resourcesCap             = 200
)

// ErrNoHistory is returned by Persist when no history store is configured.
var ErrNoHistory = errors.New("no history store configured")

// Allocator schedules missing skills into weekly buckets.
type Allocator struct {
	Catalog           catalog.Repo
	History           history.Repo
	Weeks             int
	SkillsPerWeek     int
	ResourcesPerSkill int
	Now               func() time.Time
}

// NewAllocator returns an allocator with the default 4 x 2 schedule.
func NewAllocator(cat catalog.Repo, hist history.Repo) *Allocator {
	return &Allocator{
		Catalog:           cat,
		History:           hist,
		Weeks:             DefaultWeeks,
		SkillsPerWeek:     DefaultSkillsPerWeek,
		ResourcesPerSkill: DefaultResourcesPerSkill,
		Now:               time.Now,
	}
}

func (a *Allocator) weeks() int {
	if a.Weeks <= 0 {
		return DefaultWeeks
	}
	return a.Weeks
}

func (a *Allocator) perWeek() int {
	if a.SkillsPerWeek <= 0 {
		return DefaultSkillsPerWeek
	}
	return a.SkillsPerWeek
}

func (a *Allocator) perSkill() int {
	if a.ResourcesPerSkill <= 0 {
		return DefaultResourcesPerSkill
	}
	return a.ResourcesPerSkill
}

// Generate builds the plan for result. MissingSkills is expected to be
// ordered by demand already, which Analyze guarantees.
func (a *Allocator) Generate(ctx context.Context, result gap.Result) Plan {
	missing := make([]string, 0, len(result.MissingSkills))
	for _, s := range result.MissingSkills {
		missing = append(missing, s.Name)
	}
	plan := Plan{
		TotalMissing:    len(missing),
		MatchPercentage: result.MatchPercentage,
		PrioritySkills:  []string{},
		Weeks:           []Week{},
	}
	if len(missing) == 0 {
		plan.NoGaps = true
		plan.Text = NoGapsMessage
		return plan
	}

	perWeek := a.perWeek()
	limit := min(a.weeks()*perWeek, len(missing))
	priority := missing[:limit]
	plan.PrioritySkills = append(plan.PrioritySkills, priority...)

	for n := 1; n <= a.weeks(); n++ {
		start := (n - 1) * perWeek
		if start >= len(priority) {
			plan.Weeks = append(plan.Weeks, Week{Number: n, Review: true})
			continue
		}
		end := min(start+perWeek, len(priority))
		week := Week{Number: n}
		for _, name := range priority[start:end] {
			week.Skills = append(week.Skills, a.skillPlan(ctx, name))
			week.Milestones = append(week.Milestones,
				fmt.Sprintf("Complete basic %s tutorial and build one small project", name))
		}
		week.Milestones = append(week.Milestones, "Document your learning and upload projects to GitHub")
		plan.Weeks = append(plan.Weeks, week)
	}

	if len(missing) > limit {
		plan.Remaining = append([]string(nil), missing[limit:min(limit+remainingLimit, len(missing))]...)
	}
	plan.Text = Render(plan)
	return plan
}

// skillPlan looks the skill up in the catalog. A lookup error counts as a
// miss so the plan always carries resources.
func (a *Allocator) skillPlan(ctx context.Context, name string) SkillPlan {
	var found []catalog.Resource
	if a.Catalog != nil {
		res, err := a.Catalog.Lookup(ctx, name)
		if err != nil {
			telemetry.Warn("plans.catalog_lookup_failed", map[string]any{"skill": name, "error": err.Error()})
		} else {
			found = res
		}
	}
	if len(found) == 0 {
		telemetry.Info("plans.catalog_miss", map[string]any{"skill": name})
		metrics.IncCatalogMiss()
		return SkillPlan{Skill: name, Generic: true, Resources: GenericResources(name)}
	}
	if len(found) > a.perSkill() {
		found = found[:a.perSkill()]
	}
	return SkillPlan{Skill: name, Resources: found}
}

// Records converts the scheduled weeks into history rows.
func (a *Allocator) Records(analysisID string, plan Plan) []history.Week {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	created := now().UTC()

	var out []history.Week
	for _, w := range plan.Weeks {
		if w.Review {
			continue
		}
		var (
			titles     []string
			milestones strings.Builder
			length     int
		)
		for _, sp := range w.Skills {
			for _, r := range sp.Resources {
				if length > resourcesCap {
					break
				}
				entry := fmt.Sprintf("%s (%s)", r.Title, r.Platform)
				titles = append(titles, entry)
				length += len(entry) + 2
			}
			fmt.Fprintf(&milestones, "Complete %s basics; ", sp.Skill)
		}
		out = append(out, history.Week{
			AnalysisID: analysisID,
			WeekNumber: w.Number,
			SkillFocus: strings.Join(w.FocusNames(), ", "),
			Resources:  strings.Join(titles, ", "),
			Milestones: milestones.String(),
			CreatedAt:  created,
		})
	}
	return out
}

// Persist stores one row per scheduled week and flags the analysis.
func (a *Allocator) Persist(ctx context.Context, analysisID string, plan Plan) error {
	if a.History == nil {
		return ErrNoHistory
	}
	if plan.NoGaps {
		return nil
	}
	if err := a.History.SaveLearningPath(ctx, analysisID, a.Records(analysisID, plan)); err != nil {
		return fmt.Errorf("save learning path: %w", err)
	}
	if err := a.History.MarkLearningPathGenerated(ctx, analysisID); err != nil {
		return fmt.Errorf("mark learning path: %w", err)
	}
	return nil
}
