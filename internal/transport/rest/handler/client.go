package handler

import (
	"errors"
	"io"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/service"
	"net/http"

	"github.com/gorilla/mux"
)

// ClientHandler handles the unauthenticated session endpoints
type ClientHandler struct {
	sessions *service.SessionService
	authSvc  *service.AuthService
}

// NewClientHandler creates a new client handler
func NewClientHandler(sessions *service.SessionService, authSvc *service.AuthService) *ClientHandler {
	return &ClientHandler{sessions: sessions, authSvc: authSvc}
}

// OpenRequest optionally names a returning client
type OpenRequest struct {
	ClientID string `json:"clientId,omitempty"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	*model.LoginResponse
	State navigator.Snapshot `json:"state"`
}

// Open handles POST /v1/clients
func (h *ClientHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	nav, err := h.sessions.Open(r.Context(), req.ClientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, nav.Snapshot())
}

// State handles GET /v1/clients/{clientId}/state
func (h *ClientHandler) State(w http.ResponseWriter, r *http.Request) {
	nav, err := h.sessions.Get(mux.Vars(r)["clientId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nav.Snapshot())
}

// Login handles POST /v1/clients/{clientId}/login
func (h *ClientHandler) Login(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]

	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	nav, err := h.sessions.Get(clientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if nav.Page() != navigator.PageLogin {
		writeServiceError(w, navigator.ErrTransitionNotAllowed)
		return
	}

	resp, err := h.authSvc.Login(clientID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := nav.Login(resp.Organization); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResult{LoginResponse: resp, State: nav.Snapshot()})
}
