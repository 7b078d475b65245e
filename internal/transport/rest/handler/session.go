package handler

import (
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/prompt"
	"maturitymap/internal/service"
	"maturitymap/internal/transport/rest/middleware"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// SessionHandler handles the endpoints of a logged-in client
type SessionHandler struct {
	sessions  *service.SessionService
	reportSvc *service.ReportService
	chatSvc   *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, reportSvc *service.ReportService, chatSvc *service.ChatService) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		reportSvc: reportSvc,
		chatSvc:   chatSvc,
	}
}

// AnswerRequest is the request body for recording an answer
type AnswerRequest struct {
	Value model.AnswerValue `json:"value"`
}

// MoveResponse reports whether a navigation request changed position
type MoveResponse struct {
	Moved bool               `json:"moved"`
	State navigator.Snapshot `json:"state"`
}

// ChatRequest is a follow-up question
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatIntro is shown before the first follow-up question
type ChatIntro struct {
	Greeting    string   `json:"greeting"`
	Suggestions []string `json:"suggestions"`
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*navigator.Navigator, bool) {
	nav, err := h.sessions.Get(middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return nav, true
}

// Answer handles PUT /v1/session/answers/{questionId}
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	nav, ok := h.session(w, r)
	if !ok {
		return
	}

	questionID, err := strconv.Atoi(mux.Vars(r)["questionId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var req AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := nav.RecordAnswer(questionID, req.Value); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nav.Snapshot())
}

// Next handles POST /v1/session/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*navigator.Navigator).GoNext)
}

// Previous handles POST /v1/session/previous
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*navigator.Navigator).GoPrevious)
}

func (h *SessionHandler) move(w http.ResponseWriter, r *http.Request, step func(*navigator.Navigator) (bool, error)) {
	nav, ok := h.session(w, r)
	if !ok {
		return
	}

	moved, err := step(nav)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MoveResponse{Moved: moved, State: nav.Snapshot()})
}

// Submit handles POST /v1/session/submit. The assessment runs in the
// background; progress is pushed over the WebSocket and visible in state.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())

	if err := h.sessions.SubmitAsync(clientID); err != nil {
		writeServiceError(w, err)
		return
	}

	nav, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusAccepted, nav.Snapshot())
}

// Report handles GET /v1/session/report
func (h *SessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	nav, ok := h.session(w, r)
	if !ok {
		return
	}

	org, current, previous, err := nav.Results()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.reportSvc.Build(org, current, previous))
}

// ChatIntro handles GET /v1/session/chat
func (h *SessionHandler) ChatIntro(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ChatIntro{
		Greeting:    prompt.ChatGreeting,
		Suggestions: prompt.ChatSuggestions,
	})
}

// Chat handles POST /v1/session/chat
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	nav, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, current, _, err := nav.Results()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reply, err := h.chatSvc.Ask(r.Context(), nav.ClientID(), current, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// StartOver handles POST /v1/session/start-over
func (h *SessionHandler) StartOver(w http.ResponseWriter, r *http.Request) {
	nav, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := nav.StartOver(); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nav.Snapshot())
}

// History handles GET /v1/session/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.sessions.History(r.Context(), claims.Email, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
