package curriculum

// Level is the learner skill bracket a template set targets.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists the known levels in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// Template is one graded milestone blueprint of a subject curriculum.
type Template struct {
	Title         string   `yaml:"title" json:"title"`
	Tasks         []string `yaml:"tasks" json:"tasks"`
	DurationLabel string   `yaml:"duration" json:"durationLabel"`
	Resources     []string `yaml:"resources" json:"resources"`
}

// Entry is the curriculum of a single subject.
type Entry struct {
	Subject       string
	Prerequisites []string
	Levels        map[Level][]Template
}

// Career maps a target occupation onto the subjects it relies on.
type Career struct {
	Name     string   `yaml:"name" json:"name"`
	Subjects []string `yaml:"subjects" json:"subjects"`
}

// durationHours is the fixed duration vocabulary and its base study hours.
var durationHours = map[string]float64{
	"2 weeks": 20,
	"3 weeks": 30,
	"4 weeks": 40,
	"5 weeks": 50,
	"6 weeks": 60,
}

// DefaultDurationHours applies to labels outside the vocabulary.
const DefaultDurationHours = 30.0

// DurationHours resolves a duration label to base study hours.
func DurationHours(label string) (float64, bool) {
	hours, ok := durationHours[label]
	return hours, ok
}
