package service

import (
	"context"
	"errors"
	"log/slog"
	"maturitymap/internal/cache"
	"maturitymap/internal/config"
	"maturitymap/internal/logging"
	"maturitymap/internal/metrics"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/repository"
	"maturitymap/internal/survey"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions, try again later")
)

// SessionOptions wires a SessionService
type SessionOptions struct {
	Questions []model.Question
	Assessor  navigator.Assessor
	Store     cache.SlotStore
	History   repository.AssessmentRepo // optional
	Notifier  navigator.Notifier        // optional
	Survey    config.SurveyConfig
	Limits    config.SessionConfig  // zero values disable eviction and the cap
	OnEvict   func(clientID string) // optional
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// SessionService keeps one navigator per client and runs their assessments
// on the server context
type SessionService struct {
	ctx    context.Context
	opts   SessionOptions
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session

	wg  sync.WaitGroup
	now func() time.Time
}

// NewSessionService creates a session registry. ctx bounds every assessment
// started through SubmitAsync.
func NewSessionService(ctx context.Context, opts SessionOptions) *SessionService {
	return &SessionService{
		ctx:      ctx,
		opts:     opts,
		logger:   logging.OrDiscard(opts.Logger).With("component", "sessions"),
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

type session struct {
	nav      *navigator.Navigator
	lastSeen time.Time
}

// Open returns the navigator for clientID, creating it when needed. An empty
// clientID allocates a new one. A returning client gets its stored previous
// result back.
func (s *SessionService) Open(ctx context.Context, clientID string) (*navigator.Navigator, error) {
	if clientID == "" {
		clientID = uuid.NewString()
	} else if _, err := uuid.Parse(clientID); err != nil {
		return nil, &survey.ValidationError{Field: "clientId", Reason: "must be a UUID"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[clientID]; ok {
		sess.lastSeen = now
		return sess.nav, nil
	}

	if limit := s.opts.Limits.MaxSessions; limit > 0 && len(s.sessions) >= limit {
		s.evictIdleLocked(now)
		if len(s.sessions) >= limit {
			return nil, ErrTooManySessions
		}
	}

	nav := navigator.New(ctx, navigator.Config{
		ClientID:        clientID,
		Questions:       s.opts.Questions,
		Assessor:        s.opts.Assessor,
		Cache:           cache.NewResultCache(s.opts.Store, cache.SlotKey(clientID), s.opts.Logger),
		Notifier:        s.opts.Notifier,
		OnResult:        s.archive(clientID),
		Logger:          s.opts.Logger,
		Metrics:         s.opts.Metrics,
		TransitionDelay: s.opts.Survey.TransitionDelay,
		LoadingInterval: s.opts.Survey.LoadingInterval,
	})
	s.sessions[clientID] = &session{nav: nav, lastSeen: now}
	s.opts.Metrics.SetSessions(len(s.sessions))
	s.logger.Info("session opened", "client", clientID)
	return nav, nil
}

// Get returns an existing navigator and marks it as recently used
func (s *SessionService) Get(clientID string) (*navigator.Navigator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[clientID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess.nav, nil
}

// EvictIdle closes and forgets sessions unused for longer than the idle
// timeout. Sessions waiting on an assessment are kept. It returns the number
// of sessions removed.
func (s *SessionService) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdleLocked(s.now())
}

func (s *SessionService) evictIdleLocked(now time.Time) int {
	ttl := s.opts.Limits.IdleTimeout
	if ttl <= 0 {
		return 0
	}

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) < ttl || sess.nav.Page() == navigator.PageLoading {
			continue
		}
		sess.nav.Close()
		delete(s.sessions, id)
		if s.opts.OnEvict != nil {
			s.opts.OnEvict(id)
		}
		evicted++
	}
	if evicted > 0 {
		s.opts.Metrics.SetSessions(len(s.sessions))
		s.logger.Info("evicted idle sessions", "count", evicted, "open", len(s.sessions))
	}
	return evicted
}

// Run sweeps idle sessions every sweep interval until ctx is done
func (s *SessionService) Run(ctx context.Context) error {
	interval := s.opts.Limits.SweepInterval
	if s.opts.Limits.IdleTimeout <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}

// SubmitAsync validates and starts the assessment for clientID, returning
// once the navigator is on the loading page. The request itself runs in the
// background on the server context.
func (s *SessionService) SubmitAsync(clientID string) error {
	nav, err := s.Get(clientID)
	if err != nil {
		return err
	}

	run, err := nav.BeginSubmit()
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := run(s.ctx); err != nil {
			s.logger.Warn("assessment request failed", "client", clientID, "error", err)
		}
	}()
	return nil
}

// History lists archived assessments for email, newest first
func (s *SessionService) History(ctx context.Context, email string, limit int) ([]model.AssessmentRecord, error) {
	if s.opts.History == nil {
		return []model.AssessmentRecord{}, nil
	}
	return s.opts.History.ListByEmail(ctx, email, limit)
}

// Len returns the number of open sessions
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Wait blocks until background assessments have finished
func (s *SessionService) Wait() {
	s.wg.Wait()
}

// Close stops every navigator
func (s *SessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.nav.Close()
		delete(s.sessions, id)
	}
	s.opts.Metrics.SetSessions(0)
}

func (s *SessionService) archive(clientID string) navigator.ResultHook {
	return func(ctx context.Context, org model.OrganizationContext, answers model.AnswerSet, result *model.AssessmentResult) {
		if s.opts.History == nil || result == nil {
			return
		}

		record := NewAssessmentRecord(clientID, org, answers, result, s.now())
		if err := s.opts.History.Save(ctx, record); err != nil {
			s.logger.Warn("could not archive assessment", "client", clientID, "error", err)
		}
	}
}

// NewAssessmentRecord builds a history record with a fresh id
func NewAssessmentRecord(clientID string, org model.OrganizationContext, answers model.AnswerSet, result *model.AssessmentResult, at time.Time) *model.AssessmentRecord {
	byID := make(map[string]string, len(answers))
	for id, v := range answers {
		byID[strconv.Itoa(id)] = string(v)
	}
	return &model.AssessmentRecord{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		Organization: org,
		Answers:      byID,
		Result:       *result.Clone(),
		CreatedAt:    at.UTC(),
	}
}
