package preview

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// client is one connected WebSocket. Only writeLoop writes to conn.
type client struct {
	s    *Server
	id   string
	conn *websocket.Conn
	send chan []byte

	once sync.Once
	done chan struct{}
}

func newClient(s *Server, conn *websocket.Conn, id string) *client {
	return &client{
		s:    s,
		id:   id,
		conn: conn,
		send: make(chan []byte, s.cfg.SendBuffer+2),
		done: make(chan struct{}),
	}
}

// enqueue queues data without blocking. It reports false when the buffer
// is full.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readLoop decodes client events and posts them to the event loop. It
// returns when the connection fails.
func (c *client) readLoop() {
	defer func() {
		c.s.removeClient(c)
		c.close()
		c.s.logger.Info("client disconnected", "client_id", c.id)
	}()

	c.conn.SetReadLimit(c.s.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.s.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.s.cfg.ReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.s.logger.Error("read error", "client_id", c.id, "error", err)
				c.s.recordWebSocketError("read")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.s.cfg.ReadTimeout))

		var ev ClientEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.s.logger.Warn("event decode error", "client_id", c.id, "error", err)
			c.s.recordWebSocketError("decode")
			data, _ := json.Marshal(Message{Type: TypeError, Error: "invalid event format"})
			c.enqueue(data)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err = c.s.Do(ctx, func() { c.s.apply(c, ev) })
		cancel()
		if err != nil {
			return
		}
	}
}

// writeLoop writes queued messages and keeps the connection alive with
// pings.
func (c *client) writeLoop() {
	ping := time.NewTicker(c.s.cfg.ReadTimeout * 9 / 10)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.s.logger.Debug("write failed", "client_id", c.id, "error", err)
				c.s.recordWebSocketError("write")
				c.close()
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
