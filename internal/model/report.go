package model

// MaturityLevel is the band an overall score falls into
type MaturityLevel struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

// Benchmark holds the reference scores for an organization type
type Benchmark struct {
	OrgType        OrganizationType `json:"orgType"`
	OverallScore   int              `json:"overallScore"`
	CategoryScores []CategoryScore  `json:"categoryScores"`
}

// ReportCategory joins a category score with its benchmark and description
type ReportCategory struct {
	CategoryScore
	Description    string `json:"description"`
	BenchmarkScore int    `json:"benchmarkScore"`
}

// ReportRecommendation is a recommendation plus suggested first steps
type ReportRecommendation struct {
	Recommendation
	FirstSteps []string `json:"firstSteps"`
}

// Report is the data a results dashboard or document renderer consumes
type Report struct {
	Organization    OrganizationContext    `json:"organization"`
	OverallScore    int                    `json:"overallScore"`
	Summary         string                 `json:"summary"`
	MaturityLevel   MaturityLevel          `json:"maturityLevel"`
	Categories      []ReportCategory       `json:"categories"`
	Recommendations []ReportRecommendation `json:"recommendations"`
	Benchmark       Benchmark              `json:"benchmark"`
	PreviousScore   *int                   `json:"previousScore,omitempty"`
	ScoreDelta      *int                   `json:"scoreDelta,omitempty"`
}

// ChatMessage is one turn of the follow-up conversation
type ChatMessage struct {
	Sender string `json:"sender"` // "user" or "bot"
	Text   string `json:"text"`
}

// ChatReply is the bot answer to a follow-up question
type ChatReply struct {
	Text    string `json:"text"`
	IsError bool   `json:"isError,omitempty"`
}
