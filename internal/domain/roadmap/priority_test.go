package roadmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
)

func newTestScorer(t *testing.T) Scorer {
	t.Helper()
	catalog, err := curriculum.Default()
	require.NoError(t, err)
	return NewScorer(catalog)
}

func TestScoreBrackets(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []struct {
		value float64
		want  float64
		label PriorityLabel
		level curriculum.Level
	}{
		{0, 3.0, PriorityMedium, curriculum.LevelBeginner},
		{49.9, 3.0, PriorityMedium, curriculum.LevelBeginner},
		{50, 2.0, PriorityMedium, curriculum.LevelBeginner},
		{60, 2.0, PriorityMedium, curriculum.LevelIntermediate},
		{69.99, 2.0, PriorityMedium, curriculum.LevelIntermediate},
		{70, 1.0, PriorityLow, curriculum.LevelIntermediate},
		{80, 1.0, PriorityLow, curriculum.LevelAdvanced},
		{100, 1.0, PriorityLow, curriculum.LevelAdvanced},
	}
	for _, tc := range tests {
		got := scorer.Score("Chemistry", tc.value, nil, "")
		require.Equal(t, tc.want, got.Value, "value %v", tc.value)
		require.Equal(t, tc.label, got.Label, "value %v", tc.value)
		require.Equal(t, tc.level, got.Level, "value %v", tc.value)
	}
}

func TestScoreBonuses(t *testing.T) {
	scorer := newTestScorer(t)

	interest := scorer.Score("Programming", 40, []string{"programming languages"}, "")
	require.Equal(t, 4.5, interest.Value)
	require.Equal(t, PriorityHigh, interest.Label)
	require.True(t, interest.MatchesInterest)

	career := scorer.Score("Programming", 40, nil, "aspiring software engineer")
	require.Equal(t, 5.0, career.Value)
	require.Equal(t, PriorityCritical, career.Label)
	require.True(t, career.MatchesCareer)

	both := scorer.Score("Programming", 75, []string{"Program"}, "Web Developer")
	require.Equal(t, 4.5, both.Value)

	// career membership is exact, so a fuzzy neighbour gains nothing
	near := scorer.Score("programming", 75, nil, "Web Developer")
	require.Equal(t, 1.0, near.Value)
	require.False(t, near.MatchesCareer)
}

func TestScoreIsMonotoneInScore(t *testing.T) {
	scorer := newTestScorer(t)
	prev := scorer.Score("Chemistry", 0, nil, "")
	for v := 0.5; v <= 100; v += 0.5 {
		cur := scorer.Score("Chemistry", v, nil, "")
		require.LessOrEqual(t, cur.Value, prev.Value, "score %v", v)
		prev = cur
	}
}

func TestMatchingInterestNeverLowersPriority(t *testing.T) {
	scorer := newTestScorer(t)
	for v := 0.0; v <= 100; v += 5 {
		without := scorer.Score("DataScience", v, nil, "Data Analyst")
		with := scorer.Score("DataScience", v, []string{"data"}, "Data Analyst")
		require.GreaterOrEqual(t, with.Value, without.Value)
	}
}

func TestRankIsStableAndLimited(t *testing.T) {
	scorer := newTestScorer(t)

	ranked := scorer.Rank(scores("Music", 90, "AI", 40, "Art", 90, "Math", 45), nil, "", 3)
	require.Len(t, ranked, 3)
	require.Equal(t, "AI", ranked[0].Subject)
	require.Equal(t, "Math", ranked[1].Subject)
	require.Equal(t, "Music", ranked[2].Subject)

	all := scorer.Rank(scores("Music", 90, "Art", 90), nil, "", 0)
	require.Len(t, all, 2)
	require.Equal(t, "Music", all[0].Subject)
}
