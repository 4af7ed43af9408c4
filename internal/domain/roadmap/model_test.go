package roadmap

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

func TestScoresPreserveKeyOrder(t *testing.T) {
	var got Scores
	require.NoError(t, json.Unmarshal([]byte(`{"Math": 85, "AI": 40, "Math": 90, "Art": 12.5}`), &got))
	require.Equal(t, Scores{
		{Subject: "Math", Score: 90},
		{Subject: "AI", Score: 40},
		{Subject: "Art", Score: 12.5},
	}, got)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, `{"Math":90,"AI":40,"Art":12.5}`, string(encoded))
	require.Equal(t, `{"Math":90,"AI":40,"Art":12.5}`, string(encoded))
}

func TestScoresRejectNonNumbers(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"AI": "high"}`, "performance.AI"},
		{`{"AI": null}`, "performance.AI"},
		{`{"AI": {"score": 3}}`, "performance.AI"},
		{`[40, 85]`, "performance"},
		{`"AI"`, "performance"},
	}
	for _, tc := range tests {
		var got Scores
		err := json.Unmarshal([]byte(tc.body), &got)
		require.Error(t, err, tc.body)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), tc.body)
		require.Equal(t, tc.field, apperrors.FieldOf(err), tc.body)
	}
}

func TestScoresNullAndEmpty(t *testing.T) {
	var req struct {
		Performance Scores `json:"performance"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"performance": null}`), &req))
	require.Nil(t, req.Performance)

	require.NoError(t, json.Unmarshal([]byte(`{"performance": {}}`), &req))
	require.NotNil(t, req.Performance)
	require.Empty(t, req.Performance)
}

func TestRequestRoundTripKeepsOrder(t *testing.T) {
	body := `{"userId":"u-1","performance":{"Zoology":90,"Art":90},"timeAvailable":12,"semester":3,"interests":["art"]}`
	var req Request
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Equal(t, "u-1", req.UserID)
	require.Equal(t, "Zoology", req.Scores[0].Subject)
	require.Equal(t, 12.0, req.WeeklyHours)

	encoded, err := json.Marshal(req)
	require.NoError(t, err)
	var back Request
	require.NoError(t, json.Unmarshal(encoded, &back))
	require.Equal(t, req, back)
}

func TestValidateProfile(t *testing.T) {
	valid := LearnerProfile{Scores: scores("AI", 40), WeeklyHours: 10, Semester: 4}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *LearnerProfile)
		field  string
	}{
		{"semester too low", func(p *LearnerProfile) { p.Semester = 0 }, "semester"},
		{"semester too high", func(p *LearnerProfile) { p.Semester = 9 }, "semester"},
		{"negative hours", func(p *LearnerProfile) { p.WeeklyHours = -1 }, "timeAvailable"},
		{"nan hours", func(p *LearnerProfile) { p.WeeklyHours = math.NaN() }, "timeAvailable"},
		{"infinite hours", func(p *LearnerProfile) { p.WeeklyHours = math.Inf(1) }, "timeAvailable"},
		{"score above range", func(p *LearnerProfile) { p.Scores = scores("AI", 101) }, "performance.AI"},
		{"negative score", func(p *LearnerProfile) { p.Scores = scores("Math", -3) }, "performance.Math"},
		{"nan score", func(p *LearnerProfile) { p.Scores = Scores{{Subject: "AI", Score: math.NaN()}} }, "performance.AI"},
		{"blank subject", func(p *LearnerProfile) { p.Scores = Scores{{Subject: " ", Score: 10}} }, "performance"},
		{"too many interests", func(p *LearnerProfile) { p.Interests = make([]string, 51) }, "interests"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
			require.Equal(t, tc.field, apperrors.FieldOf(err))
		})
	}
}

func TestValidateAllowsZeroHours(t *testing.T) {
	p := LearnerProfile{Scores: Scores{}, WeeklyHours: 0, Semester: 1}
	require.NoError(t, p.Validate())
}
