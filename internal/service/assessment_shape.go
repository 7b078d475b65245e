package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"maturitymap/internal/model"
	"math"
	"strings"
)

const (
	minRecommendations = 3
	maxRecommendations = 5

	// MissingCategorySummary fills a category the service left out
	MissingCategorySummary = "No assessment was returned for this category."
)

type rawCategoryScore struct {
	Category string   `json:"category"`
	Score    *float64 `json:"score"`
	Summary  string   `json:"summary"`
}

type rawRecommendation struct {
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

type rawAssessment struct {
	OverallScore    *float64            `json:"overallScore"`
	Summary         string              `json:"summary"`
	CategoryScores  []rawCategoryScore  `json:"categoryScores"`
	Recommendations []rawRecommendation `json:"recommendations"`
}

// parseAssessment strips fences, decodes and normalizes a model reply.
// Adjustments that keep the result usable are returned as warnings.
func parseAssessment(text string) (*model.AssessmentResult, []string, error) {
	var raw rawAssessment
	cleaned := StripCodeFences(text)
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		extracted := ExtractJSON(text)
		if extracted == "" {
			return nil, nil, &AssessmentError{Stage: StageParse, Err: err}
		}
		raw = rawAssessment{}
		if err2 := json.Unmarshal([]byte(extracted), &raw); err2 != nil {
			return nil, nil, &AssessmentError{Stage: StageParse, Err: err2}
		}
	}
	return normalizeAssessment(raw)
}

// normalizeAssessment enforces the result shape:
//   - overallScore is required; every score is rounded and clamped to 0-100
//   - categories come back in catalog order, exactly once each; unknown and
//     duplicate entries are dropped (first wins) and missing ones are
//     zero-filled
//   - recommendations without text are dropped, unknown priorities become
//     Medium, and at most five are kept
//
// A reply with no recognizable category or no usable recommendation is
// rejected.
func normalizeAssessment(raw rawAssessment) (*model.AssessmentResult, []string, error) {
	var warnings []string

	if raw.OverallScore == nil {
		return nil, nil, &AssessmentError{Stage: StageShape, Err: errors.New("missing overallScore")}
	}

	byCategory := make(map[model.Category]model.CategoryScore, len(raw.CategoryScores))
	for _, cs := range raw.CategoryScores {
		c := model.Category(strings.TrimSpace(cs.Category))
		if !c.IsValid() {
			warnings = append(warnings, fmt.Sprintf("dropped unknown category %q", cs.Category))
			continue
		}
		if _, dup := byCategory[c]; dup {
			warnings = append(warnings, fmt.Sprintf("dropped duplicate category %q", c))
			continue
		}
		score := 0
		if cs.Score != nil {
			score = clampScore(*cs.Score)
		} else {
			warnings = append(warnings, fmt.Sprintf("category %q had no score", c))
		}
		byCategory[c] = model.CategoryScore{Category: c, Score: score, Summary: strings.TrimSpace(cs.Summary)}
	}
	if len(byCategory) == 0 {
		return nil, nil, &AssessmentError{Stage: StageShape, Err: errors.New("no recognizable category scores")}
	}

	categories := model.Categories()
	scores := make([]model.CategoryScore, 0, len(categories))
	for _, c := range categories {
		cs, ok := byCategory[c]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("zero-filled missing category %q", c))
			cs = model.CategoryScore{Category: c, Score: 0, Summary: MissingCategorySummary}
		}
		scores = append(scores, cs)
	}

	recs := make([]model.Recommendation, 0, len(raw.Recommendations))
	for _, r := range raw.Recommendations {
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			warnings = append(warnings, "dropped recommendation without description")
			continue
		}
		p := model.Priority(strings.TrimSpace(r.Priority))
		if !p.IsValid() {
			warnings = append(warnings, fmt.Sprintf("priority %q mapped to Medium", r.Priority))
			p = model.PriorityMedium
		}
		recs = append(recs, model.Recommendation{Priority: p, Description: desc})
	}
	switch {
	case len(recs) == 0:
		return nil, nil, &AssessmentError{Stage: StageShape, Err: errors.New("no usable recommendations")}
	case len(recs) > maxRecommendations:
		warnings = append(warnings, fmt.Sprintf("kept first %d of %d recommendations", maxRecommendations, len(recs)))
		recs = recs[:maxRecommendations]
	case len(recs) < minRecommendations:
		warnings = append(warnings, fmt.Sprintf("only %d recommendations returned", len(recs)))
	}

	return &model.AssessmentResult{
		OverallScore:    clampScore(*raw.OverallScore),
		Summary:         strings.TrimSpace(raw.Summary),
		CategoryScores:  scores,
		Recommendations: recs,
	}, warnings, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
