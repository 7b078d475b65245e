package service

import (
	"maturitymap/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func fullRaw() rawAssessment {
	raw := rawAssessment{
		OverallScore: f64(64),
		Summary:      " Strategic. ",
	}
	for _, c := range model.Categories() {
		raw.CategoryScores = append(raw.CategoryScores, rawCategoryScore{Category: string(c), Score: f64(50), Summary: "fine"})
	}
	raw.Recommendations = []rawRecommendation{
		{Priority: "High", Description: "a"},
		{Priority: "Medium", Description: "b"},
		{Priority: "Low", Description: "c"},
	}
	return raw
}

func TestNormalize_CompleteResultUnchanged(t *testing.T) {
	result, warnings, err := normalizeAssessment(fullRaw())
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, 64, result.OverallScore)
	assert.Equal(t, "Strategic.", result.Summary)
	require.Len(t, result.CategoryScores, 10)
	for i, c := range model.Categories() {
		assert.Equal(t, c, result.CategoryScores[i].Category)
	}
}

func TestNormalize_CategoryRepair(t *testing.T) {
	raw := fullRaw()
	// Reverse order, drop Scaling, add a duplicate and an unknown category.
	var cats []rawCategoryScore
	for i := len(raw.CategoryScores) - 1; i >= 0; i-- {
		if raw.CategoryScores[i].Category == string(model.CategoryScaling) {
			continue
		}
		cats = append(cats, raw.CategoryScores[i])
	}
	cats = append(cats,
		rawCategoryScore{Category: string(model.CategoryGovernance), Score: f64(99), Summary: "dup"},
		rawCategoryScore{Category: "Quantum Readiness", Score: f64(80)},
	)
	raw.CategoryScores = cats

	result, warnings, err := normalizeAssessment(raw)
	require.NoError(t, err)
	require.Len(t, result.CategoryScores, 10)

	for i, c := range model.Categories() {
		assert.Equal(t, c, result.CategoryScores[i].Category, "catalog order")
	}
	scaling, ok := result.ScoreFor(model.CategoryScaling)
	require.True(t, ok)
	assert.Equal(t, 0, scaling.Score)
	assert.Equal(t, MissingCategorySummary, scaling.Summary)

	gov, _ := result.ScoreFor(model.CategoryGovernance)
	assert.Equal(t, 50, gov.Score, "first entry wins")

	assert.Len(t, warnings, 3)
}

func TestNormalize_ScoresClamped(t *testing.T) {
	raw := fullRaw()
	raw.OverallScore = f64(104.6)
	raw.CategoryScores[0].Score = f64(-3)
	raw.CategoryScores[1].Score = f64(72.5)
	raw.CategoryScores[2].Score = nil

	result, _, err := normalizeAssessment(raw)
	require.NoError(t, err)

	assert.Equal(t, 100, result.OverallScore)
	assert.Equal(t, 0, result.CategoryScores[0].Score)
	assert.Equal(t, 73, result.CategoryScores[1].Score)
	assert.Equal(t, 0, result.CategoryScores[2].Score)
}

func TestNormalize_Recommendations(t *testing.T) {
	raw := fullRaw()
	raw.Recommendations = []rawRecommendation{
		{Priority: "Urgent", Description: "one"},
		{Priority: "High", Description: "  "},
		{Priority: "Low", Description: "two"},
		{Priority: "Low", Description: "three"},
		{Priority: "Low", Description: "four"},
		{Priority: "Low", Description: "five"},
		{Priority: "Low", Description: "six"},
	}

	result, _, err := normalizeAssessment(raw)
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 5)
	assert.Equal(t, model.PriorityMedium, result.Recommendations[0].Priority)
	assert.Equal(t, "five", result.Recommendations[4].Description)
}

func TestNormalize_FewRecommendationsAccepted(t *testing.T) {
	raw := fullRaw()
	raw.Recommendations = raw.Recommendations[:1]

	result, warnings, err := normalizeAssessment(raw)
	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 1)
	assert.Contains(t, warnings, "only 1 recommendations returned")
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*rawAssessment)
	}{
		{"no overall score", func(r *rawAssessment) { r.OverallScore = nil }},
		{"no categories", func(r *rawAssessment) { r.CategoryScores = nil }},
		{"only unknown categories", func(r *rawAssessment) {
			r.CategoryScores = []rawCategoryScore{{Category: "Vibes", Score: f64(1)}}
		}},
		{"no recommendations", func(r *rawAssessment) { r.Recommendations = nil }},
		{"blank recommendations", func(r *rawAssessment) {
			r.Recommendations = []rawRecommendation{{Priority: "High"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fullRaw()
			tt.mutate(&raw)
			_, _, err := normalizeAssessment(raw)
			var aerr *AssessmentError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, StageShape, aerr.Stage)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-0.4))
	assert.Equal(t, 100, clampScore(1e9))
	assert.Equal(t, 51, clampScore(50.5))
}
