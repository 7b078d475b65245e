package ws

import (
	"encoding/json"
	"log/slog"
	"maturitymap/internal/logging"
	"maturitymap/internal/navigator"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgState            MessageType = "state"
	MsgPageChanged      MessageType = navigator.EventPageChanged
	MsgLoadingStatus    MessageType = navigator.EventLoadingStatus
	MsgAssessmentReady  MessageType = navigator.EventAssessmentReady
	MsgAssessmentFailed MessageType = navigator.EventAssessmentFailed
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one browser tab following a client session
type Connection struct {
	ClientID string
	Send     chan []byte
}

// BroadcastMessage is queued for every connection of one client
type BroadcastMessage struct {
	ClientID string
	Message  *Message
}

// Hub fans navigator events out to the WebSocket connections of each client
type Hub struct {
	logger *slog.Logger

	conns map[string]map[*Connection]struct{} // clientID -> connections
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub and starts its loop
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{
		logger:     logging.OrDiscard(logger).With("component", "ws"),
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
				delete(h.conns, id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.ClientID] == nil {
				h.conns[conn.ClientID] = make(map[*Connection]struct{})
			}
			h.conns[conn.ClientID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("connection registered", "client", conn.ClientID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.ClientID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.ClientID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("connection unregistered", "client", conn.ClientID)

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Warn("could not encode message", "type", msg.Message.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.ClientID] {
				select {
				case conn.Send <- data:
				default:
					// slow reader, drop
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Notify queues an event for clientID. It never blocks; events are dropped
// when the queue is full.
func (h *Hub) Notify(clientID, event string, payload any) {
	msg, err := NewMessage(MessageType(event), payload)
	if err != nil {
		h.logger.Warn("could not encode payload", "type", event, "error", err)
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{ClientID: clientID, Message: msg}:
	case <-h.done:
	default:
		h.logger.Warn("broadcast queue full, dropping event", "client", clientID, "type", event)
	}
}

// Connections returns the number of live connections for clientID
func (h *Hub) Connections(clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[clientID])
}

// Close stops the hub and closes every connection
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// NewMessage wraps payload in an envelope
func NewMessage(t MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Payload: data}, nil
}
