package ws

import (
	"encoding/json"
	"sync"
	"time"

	"game_arcade/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one authenticated websocket connection. Reads and writes run on
// separate pumps; everything outbound goes through the buffered Send channel
// so the commit hook never blocks on a socket.
type Client struct {
	PlayerID int64
	Conn     *websocket.Conn
	Send     chan []byte

	hub *Hub

	// sessions this connection has joined; guarded by hub.mu.
	sessions map[string]bool

	closeOnce sync.Once
}

func NewClient(playerID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		hub:      hub,
		sessions: make(map[string]bool),
	}
}

// Run registers the connection and blocks until it drops. Caller runs it in
// its own goroutine.
func (c *Client) Run() {
	c.hub.register(c)
	go c.writePump()

	c.send(Message{Type: MsgReady})
	c.readPump()
}

// Close tears the connection down; the pumps notice and unwind. Safe to call
// more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		_ = c.Conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.onDisconnect(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read error", "player", c.PlayerID, "error", err)
			}
			return
		}
		c.hub.handleCommand(c, msg)
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
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("write error", "player", c.PlayerID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// send enqueues a unicast message, dropping it if the buffer is full.
func (c *Client) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal outbound message", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		wsDropped.Inc()
		logger.Warn("send buffer full, message dropped", "player", c.PlayerID, "type", msg.Type)
	}
}

func (c *Client) sendError(sessionID, code, message string) {
	c.send(Message{Type: MsgError, Payload: ErrorPayload{
		Code:      code,
		Message:   message,
		SessionID: sessionID,
	}})
}
