package navigator

import (
	"errors"
	"maturitymap/internal/model"
)

// Page is the screen a client is on
type Page string

const (
	PageLogin   Page = "login"
	PageSurvey  Page = "survey"
	PageLoading Page = "loading"
	PageResults Page = "results"
	PageError   Page = "error"
)

// AssessmentFailedMessage is shown on the error page for any assessment failure
const AssessmentFailedMessage = "An error occurred while analyzing your results. Please try again."

// LoadingMessages rotate while an assessment is in flight
var LoadingMessages = []string{
	"Initializing analysis...",
	"Evaluating your data governance...",
	"Assessing infrastructure readiness...",
	"Analyzing workflow integration...",
	"Checking compliance and security...",
	"Compiling actionable recommendations...",
	"Finalizing your report...",
}

// Events published to the Notifier
const (
	EventPageChanged      = "page_changed"
	EventLoadingStatus    = "loading_status"
	EventAssessmentReady  = "assessment_ready"
	EventAssessmentFailed = "assessment_failed"
)

var (
	ErrTransitionNotAllowed = errors.New("transition not allowed from current page")
	ErrRequestInFlight      = errors.New("assessment already in progress")
	ErrNoResult             = errors.New("no assessment result available")
)

// SurveyState is the survey portion of a Snapshot
type SurveyState struct {
	Position   int             `json:"position"`
	Total      int             `json:"total"`
	Answered   int             `json:"answered"`
	Question   model.Question  `json:"question"`
	Answers    model.AnswerSet `json:"answers"`
	IsLast     bool            `json:"isLast"`
	IsComplete bool            `json:"isComplete"`
}

// Snapshot is an immutable copy of navigator state
type Snapshot struct {
	ClientID       string                     `json:"clientId"`
	Page           Page                       `json:"page"`
	Organization   *model.OrganizationContext `json:"organization,omitempty"`
	Survey         *SurveyState               `json:"survey,omitempty"`
	Result         *model.AssessmentResult    `json:"result,omitempty"`
	PreviousResult *model.AssessmentResult    `json:"previousResult,omitempty"`
	Error          string                     `json:"error,omitempty"`
	LoadingMessage string                     `json:"loadingMessage,omitempty"`
}

// PagePayload is sent with EventPageChanged
type PagePayload struct {
	Page  Page   `json:"page"`
	Error string `json:"error,omitempty"`
}

// LoadingPayload is sent with EventLoadingStatus
type LoadingPayload struct {
	Message string `json:"message"`
	Step    int    `json:"step"`
}
