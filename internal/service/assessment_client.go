package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maturitymap/internal/config"
	"maturitymap/internal/logging"
	"maturitymap/internal/metrics"
	"maturitymap/internal/model"
	"maturitymap/internal/prompt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

// ErrAINotConfigured is wrapped by every call made without an API key
var ErrAINotConfigured = errors.New("AI service not configured")

// Assessment failure stages
const (
	StageRequest = "request" // could not reach the service
	StageStatus  = "status"  // non-2xx reply
	StageRead    = "read"
	StageDecode  = "decode" // envelope was not generateContent JSON
	StageEmpty   = "empty"  // no candidate text
	StageParse   = "parse"  // candidate text was not the declared JSON
	StageShape   = "shape"  // JSON parsed but is unusable as a result
)

// AssessmentError is returned for any failure talking to the AI service
type AssessmentError struct {
	Stage string
	Err   error
}

func (e *AssessmentError) Error() string {
	return fmt.Sprintf("assessment %s: %v", e.Stage, e.Err)
}

func (e *AssessmentError) Unwrap() error {
	return e.Err
}

// AssessmentClient calls the Gemini generateContent API
type AssessmentClient struct {
	config  config.AIConfig
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewAssessmentClient creates a client. Outbound requests are traced with
// otelhttp; timeouts come from the per-call context.
func NewAssessmentClient(cfg config.AIConfig, logger *slog.Logger, m *metrics.Metrics) *AssessmentClient {
	return &AssessmentClient{
		config: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:  logging.OrDiscard(logger).With("component", "assessment_client"),
		metrics: m,
	}
}

// IsEnabled reports whether an API key is configured
func (s *AssessmentClient) IsEnabled() bool {
	return s.config.IsEnabled()
}

// RequestAssessment sends prompt with the declared response schema and parses
// the reply into a normalized result. It blocks for the full round trip and
// never retries.
func (s *AssessmentClient) RequestAssessment(ctx context.Context, p string, schema prompt.Schema) (*model.AssessmentResult, error) {
	start := time.Now()
	timeout := time.Duration(s.config.TimeoutMS) * time.Millisecond

	text, err := s.callGemini(ctx, s.config.Models.Assessment, p, schema, timeout)
	if err != nil {
		s.observe(err, start)
		return nil, err
	}

	result, warnings, err := parseAssessment(text)
	if err != nil {
		s.observe(err, start)
		s.logger.Warn("unusable assessment response", "error", err, "response", truncate(text, 200))
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn("assessment response adjusted", "detail", w)
	}

	s.observe(nil, start)
	s.logger.Info("assessment received",
		"overallScore", result.OverallScore,
		"recommendations", len(result.Recommendations),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// Chat sends a free-text prompt to the chat model and returns its answer
func (s *AssessmentClient) Chat(ctx context.Context, p string) (string, error) {
	timeout := time.Duration(s.config.ChatTimeoutMS) * time.Millisecond
	text, err := s.callGemini(ctx, s.config.Models.Chat, p, nil, timeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *AssessmentClient) observe(err error, start time.Time) {
	outcome := "success"
	var aerr *AssessmentError
	if errors.As(err, &aerr) {
		outcome = aerr.Stage
	} else if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveAssessment(outcome, time.Since(start))
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// callGemini makes a request to the Gemini API and returns the first
// candidate's text
func (s *AssessmentClient) callGemini(ctx context.Context, modelName, p string, schema prompt.Schema, timeout time.Duration) (string, error) {
	if !s.config.IsEnabled() {
		return "", &AssessmentError{Stage: StageRequest, Err: ErrAINotConfigured}
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: p}}}},
	}
	if schema != nil {
		reqBody.GenerationConfig = map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   schema,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", &AssessmentError{Stage: StageRequest, Err: err}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	url := s.config.ModelEndpoint(modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", &AssessmentError{Stage: StageRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &AssessmentError{Stage: StageRequest, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &AssessmentError{Stage: StageRead, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var eb geminiErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		return "", &AssessmentError{Stage: StageStatus, Err: fmt.Errorf("%d: %s", resp.StatusCode, msg)}
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", &AssessmentError{Stage: StageDecode, Err: err}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		reason := "no candidates in response"
		if geminiResp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + geminiResp.PromptFeedback.BlockReason
		}
		return "", &AssessmentError{Stage: StageEmpty, Err: errors.New(reason)}
	}

	var text strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &AssessmentError{Stage: StageEmpty, Err: errors.New("empty candidate text")}
	}
	return text.String(), nil
}

// StripCodeFences removes a surrounding ```json or ``` fence
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	switch {
	case len(s) >= len("```json") && strings.EqualFold(s[:len("```json")], "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	default:
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the outermost {...} span of text, or "" if none
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
