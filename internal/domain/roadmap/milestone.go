package roadmap

import (
	"strings"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
)

const (
	genericDuration = "3 weeks"
	reasonSeparator = " • "
	fallbackReason  = "Important for academic progress"
)

// Selector turns a ranked subject into unscheduled milestones.
type Selector struct {
	catalog    *curriculum.Catalog
	perSubject int
}

// NewSelector keeps at most perSubject templates per subject.
func NewSelector(catalog *curriculum.Catalog, perSubject int) Selector {
	return Selector{catalog: catalog, perSubject: perSubject}
}

// Select emits the foundation milestones of prereqs followed by the subject's own
// milestones. A subject or level missing from the catalog yields one generic milestone.
func (s Selector) Select(p SubjectPriority, prereqs PrerequisiteResult, targetCareer string) []Milestone {
	out := prereqs.Foundations()
	reason := milestoneReason(p, targetCareer)

	templates, ok := s.catalog.Templates(p.Subject, p.Level)
	if !ok {
		return append(out, genericMilestone(p, reason))
	}
	if s.perSubject > 0 && len(templates) > s.perSubject {
		templates = templates[:s.perSubject]
	}
	for _, tpl := range templates {
		out = append(out, Milestone{
			Title:         tpl.Title,
			Subject:       p.Subject,
			Tasks:         tpl.Tasks,
			PriorityLabel: p.Label,
			DurationLabel: tpl.DurationLabel,
			Resources:     tpl.Resources,
			CurrentScore:  p.Score,
			TargetScore:   targetScore(p.Score),
			Reason:        reason,
		})
	}
	return out
}

func genericMilestone(p SubjectPriority, reason string) Milestone {
	subject := p.Subject
	return Milestone{
		Title:   "Improve " + subject + " Skills",
		Subject: subject,
		Tasks: []string{
			"Review " + subject + " fundamentals",
			"Practice " + subject + " problems daily",
			"Complete " + subject + " projects",
			"Seek help from instructors/peers",
		},
		PriorityLabel: p.Label,
		DurationLabel: genericDuration,
		Resources:     []string{"Online courses", "Textbooks", "Practice platforms"},
		CurrentScore:  p.Score,
		TargetScore:   targetScore(p.Score),
		Reason:        reason,
	}
}

func milestoneReason(p SubjectPriority, targetCareer string) string {
	var reasons []string
	switch {
	case p.Score < weakThreshold:
		reasons = append(reasons, "Critical gap in "+p.Subject+" fundamentals")
	case p.Score < moderateThreshold:
		reasons = append(reasons, "Strengthen "+p.Subject+" foundation")
	}
	if p.MatchesInterest {
		reasons = append(reasons, "Aligns with your interests")
	}
	if p.MatchesCareer {
		reasons = append(reasons, "Essential for "+strings.TrimSpace(targetCareer))
	}
	if len(reasons) == 0 {
		return fallbackReason
	}
	return strings.Join(reasons, reasonSeparator)
}
