package roadmap

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

// PriorityLabel is the coarse bucket derived from a numeric priority value.
type PriorityLabel string

const (
	PriorityCritical PriorityLabel = "critical"
	PriorityHigh     PriorityLabel = "high"
	PriorityMedium   PriorityLabel = "medium"
	PriorityLow      PriorityLabel = "low"
)

// SubjectScore is one subject result of a learner.
type SubjectScore struct {
	Subject string
	Score   float64
}

// Scores keeps subject results in the order the learner supplied them. Ranking ties
// resolve by this order, so it is part of the input.
type Scores []SubjectScore

// UnmarshalJSON decodes a JSON object preserving key order. A repeated key keeps
// its first position and takes the last value.
func (s *Scores) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return apperrors.WrapField(apperrors.CodeInvalidInput, "performance", "malformed scores", err)
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return apperrors.WrapField(apperrors.CodeInvalidInput, "performance", "scores must be an object", nil)
	}

	out := Scores{}
	positions := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return apperrors.WrapField(apperrors.CodeInvalidInput, "performance", "malformed scores", err)
		}
		subject, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return apperrors.WrapField(apperrors.CodeInvalidInput, "performance."+subject, "malformed score", err)
		}
		var value float64
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return apperrors.WrapField(apperrors.CodeInvalidInput, "performance."+subject, "score must be a number", nil)
		}
		if err := json.Unmarshal(raw, &value); err != nil {
			return apperrors.WrapField(apperrors.CodeInvalidInput, "performance."+subject, "score must be a number", nil)
		}
		if pos, seen := positions[subject]; seen {
			out[pos].Score = value
			continue
		}
		positions[subject] = len(out)
		out = append(out, SubjectScore{Subject: subject, Score: value})
	}
	if _, err := dec.Token(); err != nil {
		return apperrors.WrapField(apperrors.CodeInvalidInput, "performance", "malformed scores", err)
	}
	*s = out
	return nil
}

// MarshalJSON writes the scores as an object in their stored order.
func (s Scores) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Subject)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the score of an exactly named subject.
func (s Scores) Lookup(subject string) (float64, bool) {
	for _, entry := range s {
		if entry.Subject == subject {
			return entry.Score, true
		}
	}
	return 0, false
}

// LearnerProfile is the engine input. Field names follow the public request body.
type LearnerProfile struct {
	Scores       Scores   `json:"performance"`
	Interests    []string `json:"interests,omitempty"`
	TargetCareer string   `json:"targetCareer,omitempty"`
	WeeklyHours  float64  `json:"timeAvailable" validate:"finite,gte=0"`
	Semester     int      `json:"semester" validate:"min=1,max=8"`
	// KnownSkills is accepted for forward compatibility; scheduling ignores it.
	KnownSkills []string `json:"knownSkills,omitempty"`
}

// SubjectPriority is the scorer verdict for one subject.
type SubjectPriority struct {
	Subject         string
	Score           float64
	Value           float64
	Label           PriorityLabel
	Level           curriculum.Level
	MatchesInterest bool
	MatchesCareer   bool
}

// Milestone is one schedulable unit of study.
type Milestone struct {
	Title          string        `json:"title"`
	Subject        string        `json:"subject"`
	Tasks          []string      `json:"tasks"`
	PriorityLabel  PriorityLabel `json:"priorityLabel"`
	DurationLabel  string        `json:"durationLabel"`
	Resources      []string      `json:"resources"`
	CurrentScore   float64       `json:"currentScore"`
	TargetScore    float64       `json:"targetScore"`
	Reason         string        `json:"reason"`
	EstimatedHours float64       `json:"estimatedHours"`
	EstimatedWeeks float64       `json:"estimatedWeeks"`
	TargetDate     string        `json:"targetDate"`
}

// Recommendation is a single study-habit suggestion.
type Recommendation struct {
	Category   string        `json:"category"`
	Suggestion string        `json:"suggestion"`
	Priority   PriorityLabel `json:"priority"`
}

// PriorityTotals aggregates the milestones sharing a priority label.
type PriorityTotals struct {
	Milestones int     `json:"milestones"`
	Hours      float64 `json:"hours"`
	Weeks      float64 `json:"weeks"`
}

// Statistics summarises a roadmap.
type Statistics struct {
	TotalMilestones     int                              `json:"totalMilestones"`
	EstimatedTotalHours float64                          `json:"estimatedTotalHours"`
	EstimatedTotalWeeks float64                          `json:"estimatedTotalWeeks"`
	HoursPerWeek        float64                          `json:"hoursPerWeek"`
	CriticalPriority    int                              `json:"criticalPriority"`
	HighPriority        int                              `json:"highPriority"`
	MediumPriority      int                              `json:"mediumPriority"`
	LowPriority         int                              `json:"lowPriority"`
	ByPriority          map[PriorityLabel]PriorityTotals `json:"byPriority"`
}

// Roadmap is the engine output for one learner.
type Roadmap struct {
	UserID               string           `json:"userId"`
	Milestones           []Milestone      `json:"roadmap"`
	StudyRecommendations []Recommendation `json:"studyRecommendations"`
	SemesterAdvice       []string         `json:"semesterAdvice"`
	Statistics           Statistics       `json:"statistics"`
	TargetCareer         *string          `json:"targetCareer"`
	GeneratedAt          time.Time        `json:"generatedAt"`
}

// Request pairs a learner profile with the user it belongs to.
type Request struct {
	UserID string `json:"userId"`
	LearnerProfile
}
