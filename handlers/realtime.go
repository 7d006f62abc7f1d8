// bingo/handlers/realtime.go
package handlers

import (
	"net/http"
	"sync"
	"time"

	"bingo/models"

	"github.com/gorilla/websocket"
)

// Event is a realtime notification pushed to connected clients.
type Event struct {
	Type       string             `json:"type"`
	Submission *models.Submission `json:"submission,omitempty"`
	Lines      []models.Line      `json:"lines,omitempty"`
}

const (
	EventSubmissionCreated = "submission_created"
	EventStatusChanged     = "status_changed"
)

// Client is one websocket connection. Moderator clients see every event,
// player clients only events about their own submissions.
type Client struct {
	conn        *websocket.Conn
	send        chan Event
	userID      string
	isModerator bool
}

// Hub fans events out to connected clients. Register and unregister go
// through channels so the run loop owns the client set; Notify takes the
// lock directly because it is called from request handlers.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client lifecycle events. Call it once in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		}
	}
}

// Notify delivers an event to the submission's owner and every moderator.
// A client with a full send buffer is dropped rather than blocking the
// request that triggered the event.
func (h *Hub) Notify(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.isModerator && (ev.Submission == nil || c.userID != ev.Submission.UserID) {
			continue
		}
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades the connection and attaches it to the hub.
func HandleWS(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleWS")
	user, ok := currentUser(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn:        conn,
		send:        make(chan Event, 8),
		userID:      user.ID,
		isModerator: user.IsModerator,
	}
	app.Hub().register <- client

	go client.writePump()
	client.readPump(app.Hub())
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		// Clients never send application messages; reading just detects close.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
