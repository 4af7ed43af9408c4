package roadmap

import (
	"math"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
)

const (
	prerequisitePassMark   = 50.0
	foundationDuration     = "2 weeks"
	scoreImprovementTarget = 20.0
)

// MissingPrerequisite is a prerequisite the learner has not passed yet. Score is the
// value of the first matching score entry, or zero when none matched.
type MissingPrerequisite struct {
	Name  string
	Score float64
}

// PrerequisiteResult is the gating verdict for one subject.
type PrerequisiteResult struct {
	Subject string
	Missing []MissingPrerequisite
}

// Met reports whether every prerequisite is satisfied.
func (r PrerequisiteResult) Met() bool {
	return len(r.Missing) == 0
}

// Foundations synthesizes one milestone per missing prerequisite, in catalog order.
func (r PrerequisiteResult) Foundations() []Milestone {
	out := make([]Milestone, 0, len(r.Missing))
	for _, missing := range r.Missing {
		name := missing.Name
		out = append(out, Milestone{
			Title:   "Foundation: " + name,
			Subject: name,
			Tasks: []string{
				"Review " + name + " fundamentals",
				"Complete " + name + " practice problems",
				"Build " + name + " mini-project",
			},
			PriorityLabel: PriorityCritical,
			DurationLabel: foundationDuration,
			Resources:     []string{"Khan Academy", "Coursera", "YouTube tutorials"},
			CurrentScore:  missing.Score,
			TargetScore:   targetScore(missing.Score),
			Reason:        "Required prerequisite for " + r.Subject,
		})
	}
	return out
}

// Resolver checks catalog prerequisites against the learner's scores.
type Resolver struct {
	catalog *curriculum.Catalog
}

// NewResolver binds a resolver to catalog.
func NewResolver(catalog *curriculum.Catalog) Resolver {
	return Resolver{catalog: catalog}
}

// Resolve lists the unmet prerequisites of subject. Subjects outside the catalog have none.
func (r Resolver) Resolve(subject string, scores Scores) PrerequisiteResult {
	result := PrerequisiteResult{Subject: subject}
	for _, prereq := range r.catalog.Prerequisites(subject) {
		score, found := matchScore(prereq, scores)
		if found && score >= prerequisitePassMark {
			continue
		}
		result.Missing = append(result.Missing, MissingPrerequisite{Name: prereq, Score: score})
	}
	return result
}

func matchScore(prereq string, scores Scores) (float64, bool) {
	for _, entry := range scores {
		if curriculum.Matches(prereq, entry.Subject) {
			return entry.Score, true
		}
	}
	return 0, false
}

func targetScore(current float64) float64 {
	return math.Min(current+scoreImprovementTarget, 100)
}
