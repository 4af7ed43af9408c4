package roadmap

import (
	"sort"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
)

const (
	weakWeight            = 3.0
	moderateWeight        = 2.0
	strongWeight          = 1.0
	interestBonus         = 1.5
	careerBonus           = 2.0
	weakThreshold         = 50.0
	moderateThreshold     = 70.0
	advancedThreshold     = 80.0
	intermediateThreshold = 60.0
)

// Scorer ranks subjects by how urgently the learner should study them.
type Scorer struct {
	catalog *curriculum.Catalog
}

// NewScorer binds a scorer to the career table of catalog.
func NewScorer(catalog *curriculum.Catalog) Scorer {
	return Scorer{catalog: catalog}
}

// Score computes the priority of a single subject.
func (s Scorer) Score(subject string, value float64, interests []string, targetCareer string) SubjectPriority {
	return s.score(subject, value, interests, s.catalog.CareerSubjects(targetCareer))
}

func (s Scorer) score(subject string, value float64, interests, careerSubjects []string) SubjectPriority {
	p := SubjectPriority{
		Subject: subject,
		Score:   value,
		Value:   bracketWeight(value),
		Level:   skillLevel(value),
	}
	if curriculum.MatchesAny(subject, interests) {
		p.Value += interestBonus
		p.MatchesInterest = true
	}
	for _, candidate := range careerSubjects {
		if candidate == subject {
			p.Value += careerBonus
			p.MatchesCareer = true
			break
		}
	}
	p.Label = labelFor(p.Value)
	return p
}

// Rank scores every subject, orders them by descending priority keeping input order
// on ties, and keeps the first limit entries. A non-positive limit keeps all.
func (s Scorer) Rank(scores Scores, interests []string, targetCareer string, limit int) []SubjectPriority {
	careerSubjects := s.catalog.CareerSubjects(targetCareer)
	ranked := make([]SubjectPriority, 0, len(scores))
	for _, entry := range scores {
		ranked = append(ranked, s.score(entry.Subject, entry.Score, interests, careerSubjects))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func bracketWeight(value float64) float64 {
	switch {
	case value < weakThreshold:
		return weakWeight
	case value < moderateThreshold:
		return moderateWeight
	default:
		return strongWeight
	}
}

func labelFor(value float64) PriorityLabel {
	switch {
	case value >= 5:
		return PriorityCritical
	case value >= 3.5:
		return PriorityHigh
	case value >= 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func skillLevel(value float64) curriculum.Level {
	switch {
	case value >= advancedThreshold:
		return curriculum.LevelAdvanced
	case value >= intermediateThreshold:
		return curriculum.LevelIntermediate
	default:
		return curriculum.LevelBeginner
	}
}
