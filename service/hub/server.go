package hub

import (
	"net"
	"net/http"
	"time"

	"PingHub/global"
	"PingHub/tools/errs"
	"PingHub/tools/ids"
	"PingHub/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server ties the registry, rooms, dispatcher and fan-out together and owns
// the WebSocket endpoint.
type Server struct {
	cfg   *global.AppConfig
	log   *zap.Logger
	reg   *Registry
	rooms *Rooms
	disp  *Dispatcher
	fan   *Fanout

	upgrader websocket.Upgrader
}

func NewServer(cfg *global.AppConfig, log *zap.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		log:   log,
		rooms: NewRooms(log),
		disp:  NewDispatcher(),
		fan:   NewFanout(cfg.FanoutWorkers, cfg.FanoutQueue, log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin 校验走 middleware.Origin，握手阶段放行
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.reg = NewRegistry(RegistryConf{
		UnauthTTL:   cfg.UnauthTTL,
		AuthTTL:     cfg.AuthTTL,
		SweepEvery:  cfg.SweepEvery,
		MaxPerUser:  cfg.MaxPerUser,
		EvictOldest: cfg.EvictOldest,
	}, log)
	return s
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Rooms() *Rooms       { return s.rooms }
func (s *Server) Disp() *Dispatcher   { return s.disp }
func (s *Server) Logger() *zap.Logger { return s.log }

// JWTSecret returns the configured HMAC secret, empty when token
// verification is disabled.
func (s *Server) JWTSecret() []byte {
	if s.cfg.JWTSecret == "" {
		return nil
	}
	return []byte(s.cfg.JWTSecret)
}

// HandleWS upgrades the request and runs the connection until it closes.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(ids.GenerateString(), ws, s.cfg.SendQueueSize, s.log)
	ws.SetReadLimit(s.cfg.MaxMessageSize)

	s.reg.Admit(client)
	s.attachHeartbeat(client, ws)
	safe.SafeGo(s.log, client.writePump)

	// Initial count goes out before any auth arrives.
	client.Enqueue(BuildCount(s.reg.CurrentCount()))

	s.log.Debug("connection admitted",
		zap.String("connId", client.ConnID), zap.Any("remote", client.Remote))

	s.readLoop(client, ws)
	s.Disconnect(client)
}

// readLoop processes inbound frames strictly in arrival order.
func (s *Server) readLoop(client *Client, ws *websocket.Conn) {
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				s.log.Debug("peer closed", zap.String("connId", client.ConnID), zap.Error(err))
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.log.Debug("read timeout", zap.String("connId", client.ConnID), zap.Error(err))
			} else {
				s.log.Debug("read error", zap.String("connId", client.ConnID), zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		s.HandleFrame(client, data)
	}
}

// HandleFrame decodes and dispatches one raw frame. Malformed input and
// unknown types answer with a single error frame; the connection stays open
// either way.
func (s *Server) HandleFrame(client *Client, raw []byte) {
	f, err := ParseFrame(raw)
	if err != nil {
		s.log.Debug("frame parse failed",
			zap.String("connId", client.ConnID), zap.Error(err))
		client.Enqueue(BuildError(errs.ErrFrameMalformed.Msg))
		return
	}

	if err := s.disp.Dispatch(&Context{S: s}, f, client); err != nil {
		if IsUnknownFrame(err) {
			client.Enqueue(BuildError(errs.ErrFrameUnknown.Msg))
			return
		}
		s.log.Warn("frame handler error",
			zap.String("connId", client.ConnID), zap.String("type", f.Type), zap.Error(err))
	}
}

// Disconnect runs the close path: drop from the registry, announce the new
// count if the connection was authenticated, then leave whatever room it
// occupied. Never errors; a misbehaving connection must not disturb others.
func (s *Server) Disconnect(client *Client) {
	hadUser := s.reg.Remove(client)
	if hadUser {
		s.BroadcastCount()
	}
	s.rooms.RemoveClient(client)
	client.Close()
	s.log.Debug("connection removed",
		zap.String("connId", client.ConnID), zap.String("userId", client.UserID))
}

// BroadcastCount pushes the current distinct-user count to every connection.
func (s *Server) BroadcastCount() {
	s.fan.Broadcast(s.reg.Snapshot(), BuildCount(s.reg.CurrentCount()))
}

// PushToUser enqueues payload to every connection of one user; reports how
// many accepted it.
func (s *Server) PushToUser(user string, payload []byte) int {
	n := 0
	for _, c := range s.reg.ListByUser(user) {
		if c.Enqueue(payload) {
			n++
		}
	}
	return n
}

// Close shuts the hub down: every connection is closed and the sweeper
// stopped. In-flight frames are dropped, matching the no-persistence
// contract.
func (s *Server) Close() {
	s.reg.Close()
}

func (s *Server) attachHeartbeat(client *Client, ws *websocket.Conn) {
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		// 忽略结果：连接可能刚好被清理
		_ = s.reg.RefreshHeartbeat(client.ConnID)
		return nil
	})
}
