package roadmap

import "github.com/yanqian/learnmate/pkg/util"

// summarize aggregates milestone counts and effort. Total hours are an exact sum;
// weeks are summed from the rounded per-milestone values.
func summarize(milestones []Milestone, weeklyHours float64) Statistics {
	stats := Statistics{
		TotalMilestones: len(milestones),
		HoursPerWeek:    weeklyHours,
		ByPriority: map[PriorityLabel]PriorityTotals{
			PriorityCritical: {},
			PriorityHigh:     {},
			PriorityMedium:   {},
			PriorityLow:      {},
		},
	}
	var weeks float64
	for _, m := range milestones {
		stats.EstimatedTotalHours += m.EstimatedHours
		weeks += m.EstimatedWeeks

		totals := stats.ByPriority[m.PriorityLabel]
		totals.Milestones++
		totals.Hours += m.EstimatedHours
		totals.Weeks = util.Round1(totals.Weeks + m.EstimatedWeeks)
		stats.ByPriority[m.PriorityLabel] = totals

		switch m.PriorityLabel {
		case PriorityCritical:
			stats.CriticalPriority++
		case PriorityHigh:
			stats.HighPriority++
		case PriorityMedium:
			stats.MediumPriority++
		case PriorityLow:
			stats.LowPriority++
		}
	}
	stats.EstimatedTotalWeeks = util.Round1(weeks)
	return stats
}
