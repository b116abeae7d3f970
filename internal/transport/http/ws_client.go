package http

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const sendBufferSize = 32

// envelope is the wire frame for every realtime event in both
// directions.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// wsClient adapts one gorilla connection to realtime.Conn. Writes go
// through a single pump goroutine so the dispatcher never writes the
// socket concurrently; Send drops when the buffer is full rather than
// letting a slow client block fan-out.
type wsClient struct {
	conn *websocket.Conn
	send chan envelope

	closeOnce sync.Once
	done      chan struct{}
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan envelope, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send enqueues an event for the write pump. Reports false when the
// connection is closing or its buffer is full; the caller treats either
// as a missed best-effort delivery.
func (c *wsClient) Send(event string, payload any) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- envelope{Event: event, Data: payload}:
		return true
	default:
		return false
	}
}

// writePump serializes all socket writes. Runs until close or a write
// error.
func (c *wsClient) writePump() {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write failed")
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
