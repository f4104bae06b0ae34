package hub

import (
	"encoding/json"
	"testing"
	"time"

	"PingHub/global"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := global.Default()
	cfg.SweepEvery = time.Hour
	s := NewServer(cfg, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func admit(s *Server, id string) *Client {
	c := newTestClient(id)
	s.reg.Admit(c)
	return c
}

func recvJSON(t *testing.T, c *Client) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(waitFrame(t, c), &m); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return m
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.Outbound():
		t.Fatalf("unexpected frame: %s", b)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMalformedFrameAnswersWithError(t *testing.T) {
	s := newTestServer(t)
	c := admit(s, "c1")

	s.HandleFrame(c, []byte(`{not json`))
	m := recvJSON(t, c)
	if m["type"] != "error" || m["error"] != "Invalid message format" {
		t.Fatalf("got %v, want error/Invalid message format", m)
	}
	expectSilence(t, c)
}

func TestUnknownFrameTypeAnswersWithError(t *testing.T) {
	s := newTestServer(t) // no handlers registered: every type is unknown
	c := admit(s, "c1")

	for _, raw := range []string{
		`{"type":"subscribe"}`,
		`{"roomId":"ping-1"}`, // missing type
		`{"type":42}`,         // non-string type
	} {
		s.HandleFrame(c, []byte(raw))
		m := recvJSON(t, c)
		if m["type"] != "error" || m["error"] != "Unknown message type" {
			t.Fatalf("frame %s: got %v, want error/Unknown message type", raw, m)
		}
	}
}

func TestDisconnectAnnouncesCountForAuthenticatedOnly(t *testing.T) {
	s := newTestServer(t)
	watcher := admit(s, "watcher")
	anon := admit(s, "anon")
	authed := admit(s, "authed")
	s.reg.Authenticate(authed, "alice")

	s.Disconnect(anon)
	expectSilence(t, watcher)

	s.Disconnect(authed)
	m := recvJSON(t, watcher)
	if m["type"] != "count" || m["count"] != float64(0) {
		t.Fatalf("got %v, want count 0", m)
	}
	if s.reg.Len() != 1 {
		t.Fatalf("connections = %d, want 1", s.reg.Len())
	}
}

func TestDisconnectVacatesRoom(t *testing.T) {
	s := newTestServer(t)
	c1 := admit(s, "c1")
	c2 := admit(s, "c2")
	s.rooms.Join(c1, "ping-42")
	s.rooms.Join(c2, "ping-42")

	s.Disconnect(c1)
	if s.rooms.Member(c1, "ping-42") {
		t.Fatal("disconnected client still a room member")
	}
	if got := s.rooms.Size("ping-42"); got != 1 {
		t.Fatalf("room size = %d, want 1", got)
	}
	if !clientClosed(c1) {
		t.Fatal("disconnected client not closed")
	}
}

func TestPushToUserHitsEveryConnection(t *testing.T) {
	s := newTestServer(t)
	c1 := admit(s, "c1")
	c2 := admit(s, "c2")
	other := admit(s, "other")
	s.reg.Authenticate(c1, "alice")
	s.reg.Authenticate(c2, "alice")
	s.reg.Authenticate(other, "bob")

	payload := []byte(`{"type":"notice","body":"hi"}`)
	if got := s.PushToUser("alice", payload); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}
	for _, c := range []*Client{c1, c2} {
		if string(waitFrame(t, c)) != string(payload) {
			t.Fatal("connection received a different payload")
		}
	}
	expectSilence(t, other)

	if got := s.PushToUser("nobody", payload); got != 0 {
		t.Fatalf("delivered to unknown user = %d, want 0", got)
	}
}

func TestStatsSnapshot(t *testing.T) {
	s := newTestServer(t)
	c1 := admit(s, "c1")
	c2 := admit(s, "c2")
	admit(s, "c3")
	s.reg.Authenticate(c1, "alice")
	s.rooms.Join(c1, "ping-1")
	s.rooms.Join(c2, "ping-1")

	st := s.Stats()
	if st.Connections != 3 || st.ActiveUsers != 1 || st.Rooms != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.RoomSizes["ping-1"] != 2 {
		t.Fatalf("room size = %d, want 2", st.RoomSizes["ping-1"])
	}
}
