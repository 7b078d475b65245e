package model

// AnswerValue is one of the fixed answer choices a question may offer
type AnswerValue string

const (
	AnswerYes           AnswerValue = "Yes"
	AnswerNo            AnswerValue = "No"
	AnswerPartially     AnswerValue = "Partially"
	AnswerInDevelopment AnswerValue = "In Development"
	AnswerPlanned       AnswerValue = "Planned"
	AnswerOccasionally  AnswerValue = "Occasionally"
	AnswerInProgress    AnswerValue = "In Progress"
	AnswerRarely        AnswerValue = "Rarely"
	AnswerSomewhat      AnswerValue = "Somewhat"
)

// Category is one of the ten maturity dimensions
type Category string

const (
	CategoryAwareness  Category = "Awareness & Pilots"
	CategoryInfra      Category = "Infrastructure"
	CategoryDataAccess Category = "Data Access"
	CategoryGovernance Category = "Governance"
	CategoryTraining   Category = "Training"
	CategoryWorkflow   Category = "Workflow Integration"
	CategoryScaling    Category = "Scaling"
	CategoryCompliance Category = "Compliance"
	CategoryInnovation Category = "Innovation"
	CategoryEcosystem  Category = "Ecosystem Impact"
)

var categories = []Category{
	CategoryAwareness,
	CategoryInfra,
	CategoryDataAccess,
	CategoryGovernance,
	CategoryTraining,
	CategoryWorkflow,
	CategoryScaling,
	CategoryCompliance,
	CategoryInnovation,
	CategoryEcosystem,
}

// Categories returns all categories in report order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c is one of the fixed categories
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Question is an immutable questionnaire entry
type Question struct {
	ID          int           `json:"id"`
	Text        string        `json:"text"`
	Category    Category      `json:"category"`
	Options     []AnswerValue `json:"options"`               // 2-3 permitted values, in display order
	Elaboration string        `json:"elaboration,omitempty"` // Shown as "what does this mean?"
}

// Allows reports whether value is one of the question's options
func (q Question) Allows(value AnswerValue) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// AnswerSet maps question id to the selected answer
type AnswerSet map[int]AnswerValue

// Clone returns an independent copy
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
