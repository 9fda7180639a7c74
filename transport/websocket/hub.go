package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sketchsync/sketchboard/board/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// InboundFrame is the envelope every client message arrives in.
type InboundFrame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame is the envelope for every server message.
type OutboundFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// inboundMessage pairs a raw frame with its sender for the hub loop.
type inboundMessage struct {
	client *Client
	data   []byte
}

// sessionEvent is an out-of-band broadcast request (REST clear, etc.).
type sessionEvent struct {
	sessionID string
	frame     OutboundFrame
}

// Hub maintains the set of live connections per session and routes every
// inbound frame to the board service.
type Hub struct {
	service service.BoardService

	// Live connections, and the session index used for fan-out. Touched
	// only by the Run goroutine.
	clients  map[*Client]bool
	sessions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	inbound    chan *inboundMessage
	events     chan *sessionEvent
}

// NewHub creates a hub over the given board service.
func NewHub(svc service.BoardService) *Hub {
	return &Hub{
		service:    svc,
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *inboundMessage, 256),
		events:     make(chan *sessionEvent, 64),
	}
}

// Run starts the hub's event loop. All registry mutation and frame routing
// happens here, one message at a time, which is what makes per-session
// broadcast order equal arrival order.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.inbound:
			h.routeFrame(msg.client, msg.data)

		case ev := <-h.events:
			h.broadcast(ev.sessionID, ev.frame, nil)
		}
	}
}

// ServeWS upgrades an HTTP request and hands the connection to the hub.
// The user id assigned here is what stroke records carry.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: uuid.NewString(),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastEvent queues a frame for every client of a session. It is the
// entry point for broadcasts that do not originate from a socket message.
func (h *Hub) BroadcastEvent(sessionID, frameType string, data interface{}) {
	select {
	case h.events <- &sessionEvent{sessionID: sessionID, frame: OutboundFrame{Type: frameType, Data: data}}:
	default:
		log.Printf("Dropping %s event for session %s: event queue full", frameType, sessionID)
	}
}

// registerClient adds a connection to the liveness set. It belongs to no
// session until it sends a join frame.
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		return
	}
	h.clients[client] = true
	log.Printf("Client connected: user=%s (total clients: %d)", client.userID, len(h.clients))
}

// unregisterClient removes a connection from the liveness set and its
// session entry. The session data itself is untouched; only the liveness
// index shrinks.
func (h *Hub) unregisterClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	h.removeFromSession(client)
	close(client.send)
	log.Printf("Client disconnected: user=%s", client.userID)
}

// addToSession indexes the client under its joined session id.
func (h *Hub) addToSession(client *Client) {
	if client.sessionID == "" {
		return
	}
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
}

// removeFromSession drops the client from the session index, deleting the
// entry once its last client leaves.
func (h *Hub) removeFromSession(client *Client) {
	if client.sessionID == "" {
		return
	}
	if clients, ok := h.sessions[client.sessionID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
}

// broadcast sends a frame to every client of a session, skipping exclude
// when set. A client whose send buffer is full is dropped rather than
// allowed to stall the loop.
func (h *Hub) broadcast(sessionID string, frame OutboundFrame, exclude *Client) {
	clients, ok := h.sessions[sessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Failed to marshal %s frame: %v", frame.Type, err)
		return
	}

	for client := range clients {
		if client == exclude || !h.clients[client] {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

// sendTo delivers a frame to a single client. Unregistered clients have a
// closed send channel and are skipped.
func (h *Hub) sendTo(client *Client, frame OutboundFrame) {
	if !h.clients[client] {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Failed to marshal %s frame: %v", frame.Type, err)
		return
	}
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}
