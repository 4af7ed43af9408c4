package roadmap

import (
	"strings"
	"time"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
	"github.com/yanqian/learnmate/pkg/util"
)

const (
	defaultTopSubjects         = 5
	defaultTemplatesPerSubject = 2
)

// Engine assembles roadmaps from learner profiles against a read-only catalog. It
// keeps no mutable state and is safe for concurrent use.
type Engine struct {
	catalog     *curriculum.Catalog
	scorer      Scorer
	resolver    Resolver
	selector    Selector
	estimator   Estimator
	topSubjects int
	now         func() time.Time
}

// NewEngine builds an engine; zero limits take the defaults (5 subjects, 2 templates).
func NewEngine(catalog *curriculum.Catalog, cfg EngineConfig) *Engine {
	top := cfg.TopSubjects
	if top <= 0 {
		top = defaultTopSubjects
	}
	perSubject := cfg.TemplatesPerSubject
	if perSubject <= 0 {
		perSubject = defaultTemplatesPerSubject
	}
	return &Engine{
		catalog:     catalog,
		scorer:      NewScorer(catalog),
		resolver:    NewResolver(catalog),
		selector:    NewSelector(catalog, perSubject),
		topSubjects: top,
		now:         util.NowUTC,
	}
}

// WithClock returns a copy of the engine reading time from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	clone := *e
	clone.now = now
	return &clone
}

// Catalog exposes the catalog the engine reads.
func (e *Engine) Catalog() *curriculum.Catalog {
	return e.catalog
}

// Generate validates the profile and assembles the roadmap of userID.
func (e *Engine) Generate(userID string, profile LearnerProfile) (Roadmap, error) {
	if err := profile.Validate(); err != nil {
		return Roadmap{}, err
	}
	interests := normalizeInterests(profile.Interests)
	targetCareer := strings.TrimSpace(profile.TargetCareer)
	now := e.now().UTC()

	milestones := make([]Milestone, 0)
	for _, priority := range e.scorer.Rank(profile.Scores, interests, targetCareer, e.topSubjects) {
		prereqs := e.resolver.Resolve(priority.Subject, profile.Scores)
		milestones = append(milestones, e.selector.Select(priority, prereqs, targetCareer)...)
	}
	e.estimator.Estimate(milestones, profile.WeeklyHours, now)

	var career *string
	if targetCareer != "" {
		career = &targetCareer
	}
	return Roadmap{
		UserID:               userID,
		Milestones:           milestones,
		StudyRecommendations: studyRecommendations(profile.Scores, profile.WeeklyHours),
		SemesterAdvice:       semesterAdvice(profile.Semester),
		Statistics:           summarize(milestones, profile.WeeklyHours),
		TargetCareer:         career,
		GeneratedAt:          now,
	}, nil
}

// Restamp re-dates a previously assembled roadmap against the current clock.
// Milestones are copied so the caller's slice is left untouched.
func (e *Engine) Restamp(rm Roadmap, weeklyHours float64) Roadmap {
	now := e.now().UTC()
	milestones := make([]Milestone, len(rm.Milestones))
	copy(milestones, rm.Milestones)
	rm.Milestones = e.estimator.Estimate(milestones, weeklyHours, now)
	rm.GeneratedAt = now
	return rm
}
