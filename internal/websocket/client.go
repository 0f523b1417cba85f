package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"voice-agent-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Client is a middleman between the websocket connection and a session.
type Client struct {
	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound frames.
	Send chan []byte

	logger    logger.ILogger
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, log logger.ILogger) *Client {
	return &Client{
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		logger: log,
		done:   make(chan struct{}),
	}
}

// Push queues a frame without blocking. It reports false if the client is gone
// or too slow to keep up.
func (c *Client) Push(f Frame) bool {
	data, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("WSClient", "Failed to marshal frame", map[string]interface{}{"type": f.Type, "error": err.Error()})
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Send <- data:
		return true
	case <-c.done:
		return false
	default:
		c.logger.Warn("WSClient", "Send buffer full, dropping frame", map[string]interface{}{"type": f.Type})
		return false
	}
}

// Close stops the write pump. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump pumps frames from the websocket connection to handle until the
// peer goes away.
func (c *Client) readPump(handle func(Frame)) {
	defer func() {
		c.Close()
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WSClient", "Connection closed unexpectedly", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		frame, err := DecodeFrame(data)
		if err != nil {
			c.Push(ErrorFrame(err))
			continue
		}
		handle(frame)
	}
}

// writePump pumps frames to the websocket connection, one frame per message,
// until the client is closed or stop fires.
func (c *Client) writePump(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn("WSClient", "Ping failed", map[string]interface{}{"error": err.Error()})
				return
			}
		case <-stop:
			c.flush()
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return
		case <-c.done:
			return
		}
	}
}

// flush writes whatever is still queued.
func (c *Client) flush() {
	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
