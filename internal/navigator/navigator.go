// Package navigator owns the top-level screen state of one client: login,
// survey, loading, results and error, and the data threaded between them.
package navigator

import (
	"context"
	"log/slog"
	"maturitymap/internal/cache"
	"maturitymap/internal/logging"
	"maturitymap/internal/metrics"
	"maturitymap/internal/model"
	"maturitymap/internal/prompt"
	"maturitymap/internal/survey"
	"sync"
	"time"
)

// Assessor produces an assessment from a prompt and response schema
type Assessor interface {
	RequestAssessment(ctx context.Context, prompt string, schema prompt.Schema) (*model.AssessmentResult, error)
}

// Notifier receives state-change events. Implementations must not block.
type Notifier interface {
	Notify(clientID, event string, payload any)
}

// ResultHook is called after each successful assessment
type ResultHook func(ctx context.Context, org model.OrganizationContext, answers model.AnswerSet, result *model.AssessmentResult)

// Config wires a Navigator
type Config struct {
	ClientID        string
	Questions       []model.Question
	Assessor        Assessor
	Cache           *cache.ResultCache
	Notifier        Notifier
	OnResult        ResultHook
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	TransitionDelay time.Duration
	LoadingInterval time.Duration
	LoadingMessages []string
}

// Navigator is the per-client page state machine. All transitions go
// through its methods; readers get copies via Snapshot.
type Navigator struct {
	mu     sync.Mutex
	cfg    Config
	logger *slog.Logger

	page     Page
	org      *model.OrganizationContext
	flow     *survey.Flow
	current  *model.AssessmentResult
	previous *model.AssessmentResult
	latest   *model.AssessmentResult // most recent completed result, current or not
	errMsg   string

	inFlight    bool
	loadingStep int
	stopLoading context.CancelFunc
}

// New creates a navigator on the login page and reads the previous result
// from the cache once.
func New(ctx context.Context, cfg Config) *Navigator {
	if cfg.LoadingInterval <= 0 {
		cfg.LoadingInterval = 2 * time.Second
	}
	if len(cfg.LoadingMessages) == 0 {
		cfg.LoadingMessages = LoadingMessages
	}

	stored := cfg.Cache.Load(ctx)
	return &Navigator{
		cfg:      cfg,
		logger:   logging.OrDiscard(cfg.Logger).With("client", cfg.ClientID),
		page:     PageLogin,
		previous: stored,
		latest:   stored,
	}
}

// ClientID identifies the client this navigator belongs to
func (n *Navigator) ClientID() string {
	return n.cfg.ClientID
}

// Page returns the current page
func (n *Navigator) Page() Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.page
}

// Login moves from the login page to a fresh survey for org
func (n *Navigator) Login(org model.OrganizationContext) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != PageLogin {
		return ErrTransitionNotAllowed
	}

	n.org = &org
	n.flow = survey.New(n.cfg.Questions, survey.Options{TransitionDelay: n.cfg.TransitionDelay})
	n.setPageLocked(PageSurvey)
	n.logger.Info("login", "organization", org.Organization, "orgType", org.OrgType)
	return nil
}

// RecordAnswer stores an answer for the current survey
func (n *Navigator) RecordAnswer(questionID int, value model.AnswerValue) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != PageSurvey {
		return ErrTransitionNotAllowed
	}
	if n.flow.RecordAnswer(questionID, value) {
		return nil
	}
	if err := survey.ValidateAnswer(n.cfg.Questions, questionID, value); err != nil {
		return err
	}
	return ErrTransitionNotAllowed
}

// GoNext advances the survey one question
func (n *Navigator) GoNext() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != PageSurvey {
		return false, ErrTransitionNotAllowed
	}
	return n.flow.GoNext(), nil
}

// GoPrevious moves the survey back one question
func (n *Navigator) GoPrevious() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != PageSurvey {
		return false, ErrTransitionNotAllowed
	}
	return n.flow.GoPrevious(), nil
}

// Submit finishes the survey and blocks while the assessment is requested.
// An incomplete survey returns a *survey.ValidationError and stays on the
// survey page. Otherwise the navigator passes through loading and ends on
// results or error; the assessment error, if any, is returned.
func (n *Navigator) Submit(ctx context.Context) error {
	run, err := n.BeginSubmit()
	if err != nil {
		return err
	}
	return run(ctx)
}

// BeginSubmit performs the synchronous half of Submit: it validates the
// survey and moves to the loading page. The returned function requests the
// assessment and must be called exactly once.
func (n *Navigator) BeginSubmit() (func(context.Context) error, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != PageSurvey {
		if n.inFlight {
			return nil, ErrRequestInFlight
		}
		return nil, ErrTransitionNotAllowed
	}

	answers, err := n.flow.Submit()
	if err != nil {
		return nil, err
	}

	if n.latest != nil {
		n.previous = n.latest
	}
	org := *n.org
	n.errMsg = ""
	n.inFlight = true
	n.setPageLocked(PageLoading)
	n.startLoadingLocked()

	return func(ctx context.Context) error {
		return n.assess(ctx, org, answers)
	}, nil
}

func (n *Navigator) assess(ctx context.Context, org model.OrganizationContext, answers model.AnswerSet) error {
	p := prompt.BuildPrompt(n.cfg.Questions, answers, org)
	result, err := n.cfg.Assessor.RequestAssessment(ctx, p, prompt.AssessmentSchema())

	n.mu.Lock()
	n.inFlight = false
	n.stopLoadingLocked()

	if err != nil {
		n.errMsg = AssessmentFailedMessage
		n.setPageLocked(PageError)
		n.notifyLocked(EventAssessmentFailed, PagePayload{Page: PageError, Error: n.errMsg})
		n.mu.Unlock()
		n.logger.Error("assessment failed", "error", err)
		return err
	}

	n.current = result
	n.latest = result
	n.setPageLocked(PageResults)
	n.notifyLocked(EventAssessmentReady, result.Clone())
	n.mu.Unlock()

	n.cfg.Cache.Save(ctx, result)
	if n.cfg.OnResult != nil {
		n.cfg.OnResult(ctx, org, answers, result.Clone())
	}
	n.logger.Info("assessment complete", "overallScore", result.OverallScore)
	return nil
}

// StartOver returns to the login page, discarding the session. The most
// recent result becomes the previous result, matching what a fresh navigator
// would load from the cache. It is refused while an assessment is in flight.
func (n *Navigator) StartOver() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.page {
	case PageLoading:
		return ErrRequestInFlight
	case PageLogin:
		return nil
	}

	if n.flow != nil {
		n.flow.Stop()
	}
	n.flow = nil
	n.org = nil
	n.current = nil
	n.errMsg = ""
	if n.latest != nil {
		n.previous = n.latest
	}
	n.setPageLocked(PageLogin)
	return nil
}

// Results returns the data behind the results page
func (n *Navigator) Results() (model.OrganizationContext, *model.AssessmentResult, *model.AssessmentResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != PageResults || n.current == nil || n.org == nil {
		return model.OrganizationContext{}, nil, nil, ErrNoResult
	}
	return *n.org, n.current.Clone(), n.previous.Clone(), nil
}

// Snapshot returns a copy of the navigator state
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := Snapshot{
		ClientID:       n.cfg.ClientID,
		Page:           n.page,
		Result:         n.current.Clone(),
		PreviousResult: n.previous.Clone(),
		Error:          n.errMsg,
	}
	if n.org != nil {
		org := *n.org
		s.Organization = &org
	}
	if n.page == PageSurvey && n.flow != nil {
		answered, total := n.flow.Progress()
		s.Survey = &SurveyState{
			Position:   n.flow.Position(),
			Total:      total,
			Answered:   answered,
			Question:   n.flow.Current(),
			Answers:    n.flow.Answers(),
			IsLast:     n.flow.IsLast(),
			IsComplete: n.flow.IsComplete(),
		}
	}
	if n.page == PageLoading {
		s.LoadingMessage = n.cfg.LoadingMessages[n.loadingStep]
	}
	return s
}

// Close stops background work owned by the navigator
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLoadingLocked()
	if n.flow != nil {
		n.flow.Stop()
	}
}

func (n *Navigator) setPageLocked(p Page) {
	n.page = p
	n.cfg.Metrics.ObservePage(string(p))
	n.notifyLocked(EventPageChanged, PagePayload{Page: p, Error: n.errMsg})
}

func (n *Navigator) notifyLocked(event string, payload any) {
	if n.cfg.Notifier != nil {
		n.cfg.Notifier.Notify(n.cfg.ClientID, event, payload)
	}
}
