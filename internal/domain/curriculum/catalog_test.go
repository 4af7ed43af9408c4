package curriculum

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

func TestDefaultCatalogLoads(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)
	require.Equal(t, "2024.1-default", catalog.Version())
	require.Equal(t, []string{"AI", "Programming", "Math", "DataScience", "WebDevelopment"}, catalog.Subjects())

	require.Equal(t, []string{"Python", "Math", "Statistics"}, catalog.Prerequisites("AI"))
	require.Empty(t, catalog.Prerequisites("Math"))
	require.Nil(t, catalog.Prerequisites("Chemistry"))

	templates, ok := catalog.Templates("AI", LevelBeginner)
	require.True(t, ok)
	require.Len(t, templates, 2)
	require.Equal(t, "Python for AI/ML", templates[0].Title)
	require.Equal(t, "2 weeks", templates[0].DurationLabel)

	_, ok = catalog.Templates("Math", LevelAdvanced)
	require.False(t, ok)
	_, ok = catalog.Templates("Chemistry", LevelBeginner)
	require.False(t, ok)
}

func TestTemplatesAreCopies(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	first, _ := catalog.Templates("Programming", LevelBeginner)
	first[0].Tasks[0] = "mutated"
	first[0].Resources = nil

	second, _ := catalog.Templates("Programming", LevelBeginner)
	require.Equal(t, "Variables & Data Types", second[0].Tasks[0])
	require.NotEmpty(t, second[0].Resources)
}

func TestResolveCareer(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	tests := []struct {
		target string
		want   string
		found  bool
	}{
		{"AI Engineer", "AI Engineer", true},
		{"senior data scientist at a startup", "Data Scientist", true},
		{"Full Stack Developer", "Full Stack Developer", true},
		{"Astronaut", "", false},
		{"   ", "", false},
	}
	for _, tc := range tests {
		career, ok := catalog.ResolveCareer(tc.target)
		require.Equal(t, tc.found, ok, tc.target)
		require.Equal(t, tc.want, career.Name, tc.target)
	}
	require.Equal(t, []string{"WebDevelopment", "Programming"}, catalog.CareerSubjects("web developer"))
	require.Nil(t, catalog.CareerSubjects("chef"))
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing version",
			doc:   "subjects: []",
			field: "version",
		},
		{
			name: "duplicate subject",
			doc: `version: v1
subjects:
  - name: Math
  - name: Math`,
			field: "subjects.Math",
		},
		{
			name: "unknown level",
			doc: `version: v1
subjects:
  - name: Math
    levels:
      expert:
        - title: Hard
          tasks: [a]
          duration: 2 weeks`,
			field: "subjects.Math.levels",
		},
		{
			name: "bad duration",
			doc: `version: v1
subjects:
  - name: Math
    levels:
      beginner:
        - title: Basics
          tasks: [a]
          duration: 7 weeks`,
			field: "subjects.Math.levels.beginner[0]",
		},
		{
			name: "no tasks",
			doc: `version: v1
subjects:
  - name: Math
    levels:
      beginner:
        - title: Basics
          duration: 2 weeks`,
			field: "subjects.Math.levels.beginner[0]",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeCatalog))
			require.Equal(t, tc.field, apperrors.FieldOf(err))
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("version: [unterminated"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeCatalog))
}

func TestMatches(t *testing.T) {
	require.True(t, Matches("Machine Learning", "learning"))
	require.True(t, Matches("ai", "AI"))
	require.True(t, Matches("Statistics", "Advanced Statistics"))
	require.False(t, Matches("Math", "Biology"))
	require.False(t, Matches("", "Math"))
	require.False(t, Matches("Math", "  "))
	require.True(t, MatchesAny("Python", []string{"Go", "python scripting"}))
	require.False(t, MatchesAny("Python", nil))
}

func TestDurationHours(t *testing.T) {
	hours, ok := DurationHours("4 weeks")
	require.True(t, ok)
	require.Equal(t, 40.0, hours)
	_, ok = DurationHours("10 days")
	require.False(t, ok)
}
