package hub

import (
	"testing"

	"go.uber.org/zap"
)

func TestEnqueuePreservesOrder(t *testing.T) {
	c := NewClient("c1", nil, 4, zap.NewNop())
	for _, p := range []string{"a", "b", "c"} {
		if !c.Enqueue([]byte(p)) {
			t.Fatalf("enqueue %q failed on an empty queue", p)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		if got := string(<-c.Outbound()); got != want {
			t.Fatalf("dequeued %q, want %q", got, want)
		}
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	c := NewClient("c1", nil, 2, zap.NewNop())
	if !c.Enqueue([]byte("a")) || !c.Enqueue([]byte("b")) {
		t.Fatal("enqueue failed below capacity")
	}
	if c.Enqueue([]byte("c")) {
		t.Fatal("enqueue succeeded on a full queue")
	}
	// 丢弃不影响已排队的帧
	if got := string(<-c.Outbound()); got != "a" {
		t.Fatalf("dequeued %q, want a", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewClient("c1", nil, 2, zap.NewNop())
	c.Close()
	c.Close()
	select {
	case <-c.done:
	default:
		t.Fatal("done channel not closed")
	}
}
