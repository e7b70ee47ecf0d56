package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// a client that sends no heartbeat for this long is dropped
	pongWait = 90 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client is one WebSocket connection. ReadPump and WritePump run in
// separate goroutines; only WritePump writes to conn.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
	mu     sync.Mutex
}

// ReadPump reads frames until the connection fails, then unregisters the
// client.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %d: %v", c.userID, err)
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %d: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("[ws] invalid message from user %d: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %d: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	default:
		log.Printf("[ws] unknown op from user %d: %s", c.userID, event.Op)
	}
}

func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %d: %v", c.userID, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[ws] send buffer full for user %d, dropping connection", c.userID)
		c.hub.requestUnregister(c)
	}
}

// WritePump drains send until the hub closes it.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
