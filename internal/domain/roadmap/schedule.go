package roadmap

import (
	"time"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
	"github.com/yanqian/learnmate/pkg/util"
)

const (
	fallbackWeeks = 4.0
	dateLayout    = "2006-01-02"
)

// Estimator places milestones on a single sequential timeline.
type Estimator struct{}

// Estimate fills hours, weeks and target dates in place, starting at start. Each
// milestone begins when the previous one ends.
func (Estimator) Estimate(milestones []Milestone, weeklyHours float64, start time.Time) []Milestone {
	cursor := start
	for i := range milestones {
		hours, ok := curriculum.DurationHours(milestones[i].DurationLabel)
		if !ok {
			hours = curriculum.DefaultDurationHours
		}
		weeks := fallbackWeeks
		if weeklyHours > 0 {
			weeks = hours / weeklyHours
		}
		cursor = util.AddWeeks(cursor, weeks)
		milestones[i].EstimatedHours = hours
		milestones[i].EstimatedWeeks = util.Round1(weeks)
		milestones[i].TargetDate = cursor.Format(dateLayout)
	}
	return milestones
}
