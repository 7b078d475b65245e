package ws

import (
	"context"
	"encoding/json"
	"maturitymap/internal/cache"
	"maturitymap/internal/catalog"
	"maturitymap/internal/config"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/service"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, c *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func TestHub_NotifyReachesEveryConnectionOfClient(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Close)

	a1 := &Connection{ClientID: "a", Send: make(chan []byte, 4)}
	a2 := &Connection{ClientID: "a", Send: make(chan []byte, 4)}
	b := &Connection{ClientID: "b", Send: make(chan []byte, 4)}
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.Connections("a") == 2 }, time.Second, time.Millisecond)

	hub.Notify("a", navigator.EventPageChanged, navigator.PagePayload{Page: navigator.PageSurvey})

	for _, conn := range []*Connection{a1, a2} {
		select {
		case data := <-conn.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, MsgPageChanged, msg.Type)
			assert.JSONEq(t, `{"page":"survey"}`, string(msg.Payload))
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}

	select {
	case <-b.Send:
		t.Fatal("other client received the event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil)
	t.Cleanup(hub.Close)

	conn := &Connection{ClientID: "a", Send: make(chan []byte, 1)}
	hub.Register(conn)
	hub.Unregister(conn)

	require.Eventually(t, func() bool { return hub.Connections("a") == 0 }, time.Second, time.Millisecond)
	_, ok := <-conn.Send
	assert.False(t, ok)
}

func TestHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewHub(nil)
	hub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Notify("a", navigator.EventLoadingStatus, navigator.LoadingPayload{Message: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
}

type wsFixture struct {
	server   *httptest.Server
	auth     *service.AuthService
	sessions *service.SessionService
	hub      *Hub
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	hub := NewHub(nil)
	t.Cleanup(hub.Close)

	auth := service.NewAuthService(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	sessions := service.NewSessionService(context.Background(), service.SessionOptions{
		Questions: catalog.Questions(),
		Store:     cache.NewMemorySlotStore(),
		Notifier:  hub,
	})
	t.Cleanup(sessions.Close)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/clients/{clientId}", NewHandler(hub, auth, sessions, nil).ClientWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &wsFixture{server: srv, auth: auth, sessions: sessions, hub: hub}
}

func (f *wsFixture) url(clientID, token string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/ws/clients/" + clientID + "?token=" + token
}

func TestHandler_StreamsNavigatorEvents(t *testing.T) {
	f := newWSFixture(t)

	nav, err := f.sessions.Open(context.Background(), "")
	require.NoError(t, err)
	login, err := f.auth.Login(nav.ClientID(), model.LoginRequest{Mode: model.LoginModeDemo})
	require.NoError(t, err)

	c, _, err := websocket.DefaultDialer.Dial(f.url(nav.ClientID(), login.Token), nil)
	require.NoError(t, err)
	defer c.Close()

	first := readMessage(t, c)
	assert.Equal(t, MsgState, first.Type)
	var snap navigator.Snapshot
	require.NoError(t, json.Unmarshal(first.Payload, &snap))
	assert.Equal(t, navigator.PageLogin, snap.Page)

	require.Eventually(t, func() bool { return f.hub.Connections(nav.ClientID()) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, nav.Login(login.Organization))

	msg := readMessage(t, c)
	assert.Equal(t, MsgPageChanged, msg.Type)
	assert.JSONEq(t, `{"page":"survey"}`, string(msg.Payload))
}

func TestHandler_RejectsBadTokens(t *testing.T) {
	f := newWSFixture(t)

	nav, err := f.sessions.Open(context.Background(), "")
	require.NoError(t, err)
	other, err := f.auth.Login("someone-else", model.LoginRequest{Mode: model.LoginModeDemo})
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"other client", other.Token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(f.url(nav.ClientID(), tt.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
