package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lorencia/mmoserver/internal/protocol"
)

const (
	// writeWait is the deadline for a single outbound write.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before being dropped.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound frames.
	maxMessageSize = 4096
	// sendBufferSize is the outbound queue depth. At 60 game_state frames per
	// second this absorbs about four seconds of backlog.
	sendBufferSize = 256
)

// Client is one websocket connection. The read pump feeds the orchestrator;
// the write pump drains the buffered send queue. A client that cannot keep up
// with the broadcast rate is closed rather than allowed to stall the world.
type Client struct {
	conn   *websocket.Conn
	orch   *Orchestrator
	logger *zap.Logger

	send chan protocol.Message
	done chan struct{}
	once sync.Once
}

// NewClient wraps an upgraded websocket connection.
//
// Precondition: conn, orch, and logger must be non-nil.
func NewClient(conn *websocket.Conn, orch *Orchestrator, logger *zap.Logger) *Client {
	return &Client{
		conn:   conn,
		orch:   orch,
		logger: logger,
		send:   make(chan protocol.Message, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Run starts both pumps and blocks until the connection is torn down.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// Send queues a message without blocking. A full queue means the client has
// fallen hopelessly behind the broadcast rate; it is disconnected.
func (c *Client) Send(msg protocol.Message) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("send queue full, dropping client")
		c.Close()
	}
}

// Close tears the connection down. Safe to call multiple times and from any
// goroutine.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.orch.Disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Debug("malformed frame", zap.Error(err))
			continue
		}
		c.orch.Dispatch(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
