package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Rooms owns the room membership index. Rooms exist only as a side effect of
// membership: an entry is created on first join and deleted the moment its
// member set empties. A connection belongs to at most one room.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]struct{} // room_id -> member set
	log   *zap.Logger
}

func NewRooms(log *zap.Logger) *Rooms {
	return &Rooms{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Join adds the connection to roomID, leaving its previous room first.
func (r *Rooms) Join(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.RoomID != "" {
		r.leaveLocked(c)
	}
	m := r.rooms[roomID]
	if m == nil {
		m = make(map[*Client]struct{})
		r.rooms[roomID] = m
	}
	m[c] = struct{}{}
	c.RoomID = roomID
}

// Leave removes the connection from roomID. A roomID that does not match the
// connection's current room is a silent no-op; stale or duplicate leave
// frames fall through here.
func (r *Rooms) Leave(c *Client, roomID string) bool {
	if roomID == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.RoomID != roomID {
		return false
	}
	r.leaveLocked(c)
	return true
}

// RemoveClient runs the leave transition for whatever room the connection
// occupies; wired to the disconnect path. No departure announcement.
func (r *Rooms) RemoveClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.RoomID != "" {
		r.leaveLocked(c)
	}
}

// Member reports whether the connection is currently in roomID.
func (r *Rooms) Member(c *Client, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	_, in := m[c]
	return in
}

// Broadcast enqueues payload to every member of roomID except exclude.
// The loop runs under the room lock: two broadcasts to the same room cannot
// interleave, so members observe them in the same relative order. Delivery
// per member is best-effort; a full queue drops that member's copy only.
func (r *Rooms) Broadcast(roomID string, payload []byte, exclude *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	n := 0
	for member := range m {
		if member == exclude {
			continue
		}
		if member.Enqueue(payload) {
			n++
		} else {
			r.log.Debug("dropping frame for slow member",
				zap.String("roomId", roomID), zap.String("connId", member.ConnID))
		}
	}
	return n
}

// Size returns the member count of a room (0 if absent).
func (r *Rooms) Size(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomID])
}

// Len returns the number of rooms with at least one member.
func (r *Rooms) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Sizes snapshots member counts per room, for stats.
func (r *Rooms) Sizes() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.rooms))
	for id, m := range r.rooms {
		out[id] = len(m)
	}
	return out
}

func (r *Rooms) leaveLocked(c *Client) {
	if m := r.rooms[c.RoomID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(r.rooms, c.RoomID)
		}
	}
	c.RoomID = ""
}
