package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"PingHub/global"
	"PingHub/service/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func startWSServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	cfg := global.Default()
	cfg.SweepEvery = time.Hour
	s := hub.NewServer(cfg, zap.NewNop())
	RegisterAll(s)

	r := gin.New()
	r.GET("/ws", s.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return m
}

func readType(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	m := readFrame(t, conn)
	if m["type"] != want {
		t.Fatalf("got frame %v, want type %q", m, want)
	}
	return m
}

func readCount(t *testing.T, conn *websocket.Conn, n int) {
	t.Helper()
	m := readType(t, conn, "count")
	if m["count"] != float64(n) {
		t.Fatalf("count = %v, want %d", m["count"], n)
	}
}

func writeFrame(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocketEndToEnd(t *testing.T) {
	_, url := startWSServer(t)

	a := dial(t, url)
	readCount(t, a, 0) // initial frame before any auth

	writeFrame(t, a, `{"type":"auth","userId":"ua"}`)
	readCount(t, a, 1)

	b := dial(t, url)
	readCount(t, b, 1)
	writeFrame(t, b, `{"type":"auth","userId":"ub"}`)
	readCount(t, a, 2)
	readCount(t, b, 2)

	writeFrame(t, a, `{"type":"join","roomId":"ping-42","userId":"ua"}`)
	readType(t, a, "joined")
	writeFrame(t, b, `{"type":"join","roomId":"ping-42","userId":"ub"}`)
	readType(t, b, "joined")
	m := readType(t, a, "user_joined")
	if m["userId"] != "ub" {
		t.Fatalf("user_joined userId = %v, want ub", m["userId"])
	}

	writeFrame(t, a, `{"type":"chat","roomId":"ping-42","userId":"ua","content":"hello"}`)
	for _, conn := range []*websocket.Conn{a, b} {
		m := readType(t, conn, "chat")
		if m["content"] != "hello" || m["userId"] != "ua" {
			t.Fatalf("chat frame = %v", m)
		}
		if id, _ := m["messageId"].(string); id == "" {
			t.Fatal("chat frame has no messageId")
		}
	}

	// b 断开后剩余连接收到新的人数
	_ = b.Close()
	readCount(t, a, 1)
}

func TestWebSocketErrorFramesKeepConnectionOpen(t *testing.T) {
	_, url := startWSServer(t)

	conn := dial(t, url)
	readCount(t, conn, 0)

	writeFrame(t, conn, `this is not json`)
	m := readType(t, conn, "error")
	if m["error"] != "Invalid message format" {
		t.Fatalf("error = %v", m["error"])
	}

	writeFrame(t, conn, `{"type":"mystery"}`)
	m = readType(t, conn, "error")
	if m["error"] != "Unknown message type" {
		t.Fatalf("error = %v", m["error"])
	}

	// 连接仍然可用
	writeFrame(t, conn, `{"type":"auth","userId":"ua"}`)
	readCount(t, conn, 1)
}
