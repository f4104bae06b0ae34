package hub

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ---- 常量参数（建议值） ----
const (
	writeWait      = 10 * time.Second
	pingInterval   = 25 * time.Second
	firstPingDelay = 5 * time.Second
	pongWait       = 75 * time.Second
)

// Client represents one live connection to the hub.
// A single user may have multiple connections, each maintained separately.
// UserID and RoomID are set only by the handlers running on this connection's
// reader goroutine; the registry/rooms locks cover concurrent reads.
type Client struct {
	ConnID     string // Unique connection ID (unique within the local node)
	UserID     string // User ID (set after an auth frame)
	RoomID     string // Current room (set after a join)
	Authorized bool

	ws     *websocket.Conn
	Remote net.Addr

	CreatedAt time.Time
	UpdatedAt time.Time
	Heartbeat time.Time

	TTL      time.Duration // 当前 TTL（随授权态切换）
	ExpireAt time.Time     // 到期时间（过期由 sweeper 清理）

	send      chan []byte // Outbound queue (consumed by a single writer goroutine)
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

// NewClient creates a new client connection object. ws may be nil in tests;
// the writer goroutine is only started for real connections.
func NewClient(connID string, ws *websocket.Conn, sendQueueSize int, log *zap.Logger) *Client {
	c := &Client{
		ConnID: connID,
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		log:    log,
	}
	if ws != nil {
		c.Remote = ws.RemoteAddr()
	}
	return c
}

// Enqueue hands a payload to the connection's writer. Delivery is
// fire-and-forget: a full queue drops the payload and reports false.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Outbound exposes the send queue for the writer goroutine and for tests.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// Close signals the writer to finish; safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. It owns all writes to the underlying connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	first := time.NewTimer(firstPingDelay)
	defer func() {
		ticker.Stop()
		first.Stop()
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("write payload failed",
					zap.String("connId", c.ConnID), zap.String("userId", c.UserID), zap.Error(err))
				return
			}

		case <-first.C: // 首次 ping 延后，避免刚连上即写超时
			if !c.writePing() {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

func (c *Client) writePing() bool {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
		c.log.Debug("ping failed", zap.String("connId", c.ConnID), zap.Error(err))
		return false
	}
	return true
}
