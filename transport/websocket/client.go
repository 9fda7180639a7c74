package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. Frames carry at most one stroke
	// segment, so this is generous.
	maxMessageSize = 4096
)

// Client is one live socket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// userID is assigned at upgrade time and attributes every stroke this
	// connection draws.
	userID string

	// sessionID is empty until a join frame is accepted. Written only by
	// the hub loop.
	sessionID string
}

// UserID returns the connection's process-unique user id.
func (c *Client) UserID() string {
	return c.userID
}

// joinedTo reports whether the client has joined the given session.
func (c *Client) joinedTo(sessionID string) bool {
	return c.sessionID != "" && c.sessionID == sessionID
}

// readPump forwards inbound frames to the hub until the connection drops,
// then unregisters itself.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", c.userID, err)
			}
			break
		}
		c.hub.inbound <- &inboundMessage{client: c, data: data}
	}
}

// writePump drains the send channel to the peer, one JSON object per text
// frame, and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
