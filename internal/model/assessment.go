package model

import "time"

// Priority ranks a recommendation
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// IsValid reports whether p is High, Medium or Low
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// CategoryScore is the AI-assigned score for one category
type CategoryScore struct {
	Category Category `json:"category" bson:"category"`
	Score    int      `json:"score" bson:"score"` // 0-100
	Summary  string   `json:"summary" bson:"summary"`
}

// Recommendation is one actionable item in the report
type Recommendation struct {
	Priority    Priority `json:"priority" bson:"priority"`
	Description string   `json:"description" bson:"description"`
}

// AssessmentResult is the structured report returned by the AI service
type AssessmentResult struct {
	OverallScore    int              `json:"overallScore" bson:"overallScore"` // 0-100
	Summary         string           `json:"summary" bson:"summary"`
	CategoryScores  []CategoryScore  `json:"categoryScores" bson:"categoryScores"`
	Recommendations []Recommendation `json:"recommendations" bson:"recommendations"`
}

// Clone returns a deep copy so snapshots never alias navigator state
func (r *AssessmentResult) Clone() *AssessmentResult {
	if r == nil {
		return nil
	}
	out := *r
	out.CategoryScores = append([]CategoryScore(nil), r.CategoryScores...)
	out.Recommendations = append([]Recommendation(nil), r.Recommendations...)
	return &out
}

// ScoreFor returns the score for a category, or false if it is missing
func (r *AssessmentResult) ScoreFor(c Category) (CategoryScore, bool) {
	for _, cs := range r.CategoryScores {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategoryScore{}, false
}

// AssessmentRecord is a completed assessment kept in history
type AssessmentRecord struct {
	ID           string              `json:"id" bson:"_id"`
	ClientID     string              `json:"clientId" bson:"clientId"`
	Organization OrganizationContext `json:"organization" bson:"organization"`
	Answers      map[string]string   `json:"answers" bson:"answers"` // question id -> answer
	Result       AssessmentResult    `json:"result" bson:"result"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
}
