package roadmap

import "strings"

const minimumWeeklyHours = 10.0

// studyRecommendations derives habit suggestions from the weekly budget and the
// average score.
func studyRecommendations(scores Scores, weeklyHours float64) []Recommendation {
	var recs []Recommendation

	if weeklyHours < minimumWeeklyHours {
		recs = append(recs, Recommendation{
			Category:   "Time Management",
			Suggestion: "Consider increasing study time to at least 10-15 hours/week for optimal progress",
			Priority:   PriorityHigh,
		})
	}

	avg := averageScore(scores)
	switch {
	case avg < 60:
		recs = append(recs,
			Recommendation{
				Category:   "Study Strategy",
				Suggestion: "Focus on fundamentals first. Use active recall and spaced repetition techniques",
				Priority:   PriorityCritical,
			},
			Recommendation{
				Category:   "Support",
				Suggestion: "Seek regular help from instructors and join study groups",
				Priority:   PriorityHigh,
			},
		)
	case avg < 80:
		recs = append(recs, Recommendation{
			Category:   "Study Strategy",
			Suggestion: "Balance theory with practical projects. Teach concepts to others to solidify understanding",
			Priority:   PriorityMedium,
		})
	default:
		recs = append(recs, Recommendation{
			Category:   "Advanced Learning",
			Suggestion: "Explore advanced topics and contribute to open-source projects",
			Priority:   PriorityLow,
		})
	}

	var weak []string
	for _, entry := range scores {
		if entry.Score < weakThreshold {
			weak = append(weak, entry.Subject)
		}
	}
	if len(weak) > 0 {
		recs = append(recs, Recommendation{
			Category:   "Priority Focus",
			Suggestion: "Dedicate 60% of study time to: " + strings.Join(weak, ", "),
			Priority:   PriorityCritical,
		})
	}

	return append(recs, Recommendation{
		Category:   "Balance",
		Suggestion: "Maintain 70-30 balance between weak and strong subjects",
		Priority:   PriorityMedium,
	})
}

func averageScore(scores Scores) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, entry := range scores {
		sum += entry.Score
	}
	return sum / float64(len(scores))
}

// semesterAdvice returns the fixed advice block of the semester bucket.
func semesterAdvice(semester int) []string {
	switch {
	case semester <= 2:
		return []string{
			"🎯 Build strong foundations - this semester sets the tone for your entire program",
			"📚 Focus on core subjects like Programming and Math",
			"🤝 Network with seniors and join tech communities",
		}
	case semester <= 4:
		return []string{
			"🚀 Start building projects to apply theoretical knowledge",
			"💼 Begin exploring internship opportunities",
			"🔬 Consider research projects or competitive programming",
		}
	case semester <= 6:
		return []string{
			"🎓 Deepen specialization in your areas of interest",
			"💻 Contribute to open-source projects",
			"📝 Start preparing for placement/grad school",
		}
	default:
		return []string{
			"🏆 Focus on capstone projects and portfolio building",
			"🎤 Prepare for technical interviews",
			"🌐 Establish your professional online presence",
		}
	}
}
