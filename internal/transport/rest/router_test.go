package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maturitymap/internal/cache"
	"maturitymap/internal/catalog"
	"maturitymap/internal/config"
	"maturitymap/internal/metrics"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/service"
	"maturitymap/internal/transport/ws"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assessmentJSON = `{
  "overallScore": 57.6,
  "summary": "A developing organization with strong clinical workflows.",
  "categoryScores": [
    {"category": "Awareness & Pilots", "score": 60, "summary": "Pilots underway."},
    {"category": "Governance", "score": 35, "summary": "No formal committee."}
  ],
  "recommendations": [
    {"priority": "High", "description": "Establish an AI governance committee."},
    {"priority": "Medium", "description": "Improve data access for analytics."},
    {"priority": "Low", "description": "Launch AI literacy training."}
  ]
}`

// fakeGemini answers assessment calls with a fenced JSON document and chat
// calls with plain text
func fakeGemini(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := "Start with a governance charter."
		if strings.Contains(r.URL.Path, "gemini-2.5-pro") {
			text = "```json\n" + assessmentJSON + "\n```"
		}
		body, _ := json.Marshal(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type apiFixture struct {
	server   *httptest.Server
	sessions *service.SessionService
}

func newAPI(t *testing.T, tweaks ...func(*config.Config)) *apiFixture {
	t.Helper()
	cfg := config.Default()
	cfg.AI.APIKey = "test-key"
	cfg.AI.BaseURL = fakeGemini(t).URL
	cfg.Survey.LoadingInterval = 10 * time.Millisecond
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	m := metrics.New()
	hub := ws.NewHub(nil)
	t.Cleanup(hub.Close)

	client := service.NewAssessmentClient(cfg.AI, nil, m)
	sessions := service.NewSessionService(context.Background(), service.SessionOptions{
		Questions: catalog.Questions(),
		Assessor:  client,
		Store:     cache.NewMemorySlotStore(),
		Notifier:  hub,
		Survey:    cfg.Survey,
		Limits:    cfg.Sessions,
		Metrics:   m,
	})
	t.Cleanup(sessions.Close)

	router := NewRouter(&Container{
		Server:        cfg.Server,
		AuthService:   service.NewAuthService(cfg.Auth),
		Sessions:      sessions,
		ReportService: service.NewReportService(),
		ChatService:   service.NewChatService(client, cfg.Chat, nil, m),
		WSHub:         hub,
		Metrics:       m,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &apiFixture{server: srv, sessions: sessions}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *apiFixture) login(t *testing.T) (string, string) {
	t.Helper()
	var opened navigator.Snapshot
	require.Equal(t, http.StatusCreated, f.do(t, "POST", "/v1/clients", "", nil, &opened))

	var login struct {
		Token string             `json:"token"`
		State navigator.Snapshot `json:"state"`
	}
	status := f.do(t, "POST", "/v1/clients/"+opened.ClientID+"/login", "", model.LoginRequest{Mode: model.LoginModeDemo}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, navigator.PageSurvey, login.State.Page)
	return opened.ClientID, login.Token
}

func TestRouter_HealthAndCatalog(t *testing.T) {
	f := newAPI(t)

	var health map[string]string
	assert.Equal(t, http.StatusOK, f.do(t, "GET", "/health", "", nil, &health))
	assert.Equal(t, "ok", health["status"])

	var cat struct {
		Questions         []model.Question         `json:"questions"`
		Categories        []map[string]string      `json:"categories"`
		OrganizationTypes []model.OrganizationType `json:"organizationTypes"`
	}
	require.Equal(t, http.StatusOK, f.do(t, "GET", "/v1/catalog", "", nil, &cat))
	assert.Len(t, cat.Questions, catalog.Len())
	assert.Len(t, cat.Categories, 10)
	assert.Len(t, cat.OrganizationTypes, 6)
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newAPI(t)

	req, err := http.NewRequest("OPTIONS", f.server.URL+"/v1/clients", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_FullAssessmentFlow(t *testing.T) {
	f := newAPI(t)
	clientID, token := f.login(t)

	// submitting early is rejected and leaves the survey in place
	var errBody map[string]string
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, "POST", "/v1/session/submit", token, nil, &errBody))
	assert.Contains(t, errBody["error"], "answers")

	for _, q := range catalog.Questions() {
		var state navigator.Snapshot
		status := f.do(t, "PUT", fmt.Sprintf("/v1/session/answers/%d", q.ID), token, map[string]string{"value": string(q.Options[0])}, &state)
		require.Equal(t, http.StatusOK, status, "question %d", q.ID)
	}

	var submitted navigator.Snapshot
	require.Equal(t, http.StatusAccepted, f.do(t, "POST", "/v1/session/submit", token, nil, &submitted))
	f.sessions.Wait()

	var state navigator.Snapshot
	require.Equal(t, http.StatusOK, f.do(t, "GET", "/v1/clients/"+clientID+"/state", "", nil, &state))
	require.Equal(t, navigator.PageResults, state.Page)
	require.NotNil(t, state.Result)
	assert.Equal(t, 58, state.Result.OverallScore)
	assert.Len(t, state.Result.CategoryScores, 10, "missing categories are filled")

	var report model.Report
	require.Equal(t, http.StatusOK, f.do(t, "GET", "/v1/session/report", token, nil, &report))
	assert.Equal(t, "Demo Organization", report.Organization.Organization)
	assert.Equal(t, 58, report.OverallScore)
	assert.Len(t, report.Categories, 10)
	assert.Nil(t, report.PreviousScore)

	var intro struct {
		Greeting    string   `json:"greeting"`
		Suggestions []string `json:"suggestions"`
	}
	require.Equal(t, http.StatusOK, f.do(t, "GET", "/v1/session/chat", token, nil, &intro))
	assert.NotEmpty(t, intro.Greeting)
	assert.Len(t, intro.Suggestions, 3)

	var reply model.ChatReply
	require.Equal(t, http.StatusOK, f.do(t, "POST", "/v1/session/chat", token, map[string]string{"question": "Where do we start?"}, &reply))
	assert.Equal(t, "Start with a governance charter.", reply.Text)
	assert.False(t, reply.IsError)

	var history []model.AssessmentRecord
	require.Equal(t, http.StatusOK, f.do(t, "GET", "/v1/session/history", token, nil, &history))
	assert.Empty(t, history, "no history store configured")

	var reset navigator.Snapshot
	require.Equal(t, http.StatusOK, f.do(t, "POST", "/v1/session/start-over", token, nil, &reset))
	assert.Equal(t, navigator.PageLogin, reset.Page)
	require.NotNil(t, reset.PreviousResult)
	assert.Equal(t, 58, reset.PreviousResult.OverallScore)

	assert.Equal(t, http.StatusConflict, f.do(t, "GET", "/v1/session/report", token, nil, nil))
}

func TestRouter_SessionRoutesRequireToken(t *testing.T) {
	f := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, "POST", "/v1/session/next", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, f.do(t, "POST", "/v1/session/next", "garbage", nil, nil))
}

func TestRouter_ErrorMapping(t *testing.T) {
	f := newAPI(t)
	_, token := f.login(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusUnprocessableEntity,
		f.do(t, "PUT", "/v1/session/answers/1", token, map[string]string{"value": "Maybe"}, &errBody))
	assert.Equal(t, http.StatusConflict, f.do(t, "GET", "/v1/session/report", token, nil, nil))
	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/v1/clients/00000000-0000-0000-0000-000000000000/state", "", nil, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, "POST", "/v1/clients", "", map[string]string{"clientId": "nope"}, nil))

	var opened navigator.Snapshot
	require.Equal(t, http.StatusCreated, f.do(t, "POST", "/v1/clients", "", nil, &opened))
	assert.Equal(t, http.StatusUnauthorized,
		f.do(t, "POST", "/v1/clients/"+opened.ClientID+"/login", "", model.LoginRequest{Mode: model.LoginModeLogin}, &errBody))
	assert.Equal(t, "Please enter your email and password to log in.", errBody["error"])
}

func TestRouter_SessionCap(t *testing.T) {
	f := newAPI(t, func(c *config.Config) { c.Sessions.MaxSessions = 1 })

	var opened navigator.Snapshot
	require.Equal(t, http.StatusCreated, f.do(t, "POST", "/v1/clients", "", nil, &opened))

	var errBody map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, "POST", "/v1/clients", "", nil, &errBody))
	assert.NotEmpty(t, errBody["error"])
	assert.Equal(t, http.StatusCreated,
		f.do(t, "POST", "/v1/clients", "", map[string]string{"clientId": opened.ClientID}, nil),
		"a known client can reopen")
	assert.Equal(t, 1, f.sessions.Len())
}

func TestRouter_Metrics(t *testing.T) {
	f := newAPI(t)
	f.login(t)

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `maturitymap_page_transitions_total{page="survey"} 1`)
	assert.Contains(t, string(body), "maturitymap_sessions_active 1")
}
