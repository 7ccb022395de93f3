package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Conn is one subscribed websocket connection. Outbound messages go through
// a buffered channel drained by a single write pump, so broadcast fan-out
// never blocks on a peer's socket.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewConn(ws *websocket.Conn) *Conn {
	c := &Conn{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
	}
	go c.writePump()
	return c
}

func (c *Conn) writePump() {
	for data := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	_ = c.ws.Close()
}

// trySend queues a message without blocking. A full buffer means the peer is
// too slow; the caller drops the connection.
func (c *Conn) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// SendJSON queues a single payload for this connection only, e.g. the
// initial snapshot on connect.
func (c *Conn) SendJSON(payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	return c.trySend(data)
}

// Close stops the write pump, which closes the underlying socket. Safe to
// call more than once and safe to race with trySend.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
