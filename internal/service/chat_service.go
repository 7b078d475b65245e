package service

import (
	"context"
	"errors"
	"log/slog"
	"maturitymap/internal/config"
	"maturitymap/internal/logging"
	"maturitymap/internal/metrics"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/prompt"
	"maturitymap/internal/survey"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ChatErrorReply is returned in place of an answer when the model fails
const ChatErrorReply = "I'm sorry, I encountered an error trying to process that. Please try asking in a different way."

var ErrRateLimited = errors.New("too many chat requests, slow down")

// Chatter answers a free-form prompt
type Chatter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// ChatService answers follow-up questions about an assessment result
type ChatService struct {
	chatter Chatter
	logger  *slog.Logger
	metrics *metrics.Metrics

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewChatService creates a chat service with a per-client rate limit
func NewChatService(chatter Chatter, cfg config.ChatConfig, logger *slog.Logger, m *metrics.Metrics) *ChatService {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &ChatService{
		chatter:  chatter,
		logger:   logging.OrDiscard(logger).With("component", "chat"),
		metrics:  m,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Ask answers question in the context of result. Model failures produce
// the fixed error reply rather than an error.
func (s *ChatService) Ask(ctx context.Context, clientID string, result *model.AssessmentResult, question string) (model.ChatReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return model.ChatReply{}, &survey.ValidationError{Field: "question", Reason: "must not be empty"}
	}
	if result == nil {
		return model.ChatReply{}, navigator.ErrNoResult
	}
	if !s.limiter(clientID).Allow() {
		s.metrics.ObserveChat("rate_limited")
		return model.ChatReply{}, ErrRateLimited
	}

	p, err := prompt.BuildChatPrompt(result, question)
	if err != nil {
		return s.failed(clientID, err), nil
	}

	answer, err := s.chatter.Chat(ctx, p)
	if err != nil {
		return s.failed(clientID, err), nil
	}
	if answer == "" {
		return s.failed(clientID, errors.New("empty chat response")), nil
	}

	s.metrics.ObserveChat("ok")
	return model.ChatReply{Text: answer}, nil
}

func (s *ChatService) failed(clientID string, err error) model.ChatReply {
	s.logger.Warn("chat request failed", "client", clientID, "error", err)
	s.metrics.ObserveChat("error")
	return model.ChatReply{Text: ChatErrorReply, IsError: true}
}

// Forget drops the rate limiter kept for clientID
func (s *ChatService) Forget(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.limiters, clientID)
}

// Clients returns the number of clients with a rate limiter
func (s *ChatService) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

func (s *ChatService) limiter(clientID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[clientID]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[clientID] = l
	}
	return l
}
