package network

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Upper bound on one command's trip through the frame loop.
	commandTimeout = 5 * time.Second
)

var errRateLimited = apperrors.Conflictf("rate limit exceeded, slow down")

// Client is one WebSocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	remote  string
}

// NewClient creates a client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	t := hub.tuning
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, t.ClientSendBuffer),
		limiter: rate.NewLimiter(rate.Limit(t.MaxMessagesPerSecond), t.MessageBurst),
		remote:  conn.RemoteAddr().String(),
	}
}

// Register adds the client to the hub.
// It returns false once the hub has stopped.
func (c *Client) Register() bool {
	select {
	case c.hub.register <- c:
		return true
	case <-c.hub.done:
		return false
	}
}

// ReadPump reads commands until the connection closes. Each command runs
// through the frame loop and its RESULT goes back to this client only.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read failed", "remote", c.remote, "error", err)
				c.hub.metrics.RecordWSError()
			}
			return
		}
		c.hub.metrics.RecordWSMessage(true)
		c.reply(c.handle(ctx, message))
	}
}

func (c *Client) handle(ctx context.Context, message []byte) Result {
	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		return resultFor("", nil, apperrors.Validationf("malformed command: %v", err))
	}
	if !c.limiter.Allow() {
		c.hub.logger.Warn("Rate limit exceeded", "remote", c.remote, "command", req.Type)
		return resultFor(req.Type, nil, errRateLimited)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	res, err := Execute(cmdCtx, c.hub.exec, req)
	if err != nil {
		c.hub.logger.Debug("command failed", "remote", c.remote, "command", req.Type, "error", err)
	}
	return res
}

// reply queues a message for this client. A full buffer drops the reply
// rather than stalling the read loop.
func (c *Client) reply(res Result) {
	payload, err := json.Marshal(res)
	if err != nil {
		c.hub.logger.Error("Failed to serialize result", "error", err)
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- payload:
		c.hub.metrics.RecordWSMessage(false)
	default:
		c.hub.metrics.RecordWSError()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One JSON document per frame so clients can decode each message.
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

// Upgrader accepts any origin; CORS on the REST side is handled by
// middleware and the socket carries no credentials.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the request and starts the client's pumps.
func (h *Hub) ServeWS(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Full() {
			http.Error(w, "too many clients", http.StatusServiceUnavailable)
			return
		}
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error("Failed to upgrade websocket connection", "error", err)
			h.metrics.RecordWSError()
			return
		}

		client := NewClient(h, conn)
		if !client.Register() {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump(ctx)
	}
}
