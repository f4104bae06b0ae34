package hub

import (
	"sync"
	"time"

	"PingHub/tools/safe"

	"go.uber.org/zap"
)

// ===== 配置 =====

type RegistryConf struct {
	UnauthTTL   time.Duration    // 未授权连接的 TTL（如 300s）
	AuthTTL     time.Duration    // 已授权连接的 TTL（如 2h）
	SweepEvery  time.Duration    // 清理周期（如 10s）
	MaxPerUser  int              // 每用户最大连接数（<=0 不限制）
	EvictOldest bool             // 超限时是否淘汰最老连接
	Clock       func() time.Time // 可注入时钟（单测用）；nil => time.Now
}

func (c *RegistryConf) norm() {
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 10 * time.Second
	}
	if c.UnauthTTL <= 0 {
		c.UnauthTTL = 300 * time.Second
	}
	if c.AuthTTL <= 0 {
		c.AuthTTL = 2 * time.Hour
	}
}

// Registry owns the set of live connections and the active-user set. The
// user count exposed to clients is the number of distinct user ids, not the
// connection count.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]*Client            // conn_id -> client
	byUser map[string]map[string]*Client // user -> conn_id -> client
	active map[string]struct{}           // distinct authenticated user ids

	conf     RegistryConf
	log      *zap.Logger
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRegistry(conf RegistryConf, log *zap.Logger) *Registry {
	conf.norm()
	r := &Registry{
		byConn: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
		active: make(map[string]struct{}),
		conf:   conf,
		log:    log,
		stopCh: make(chan struct{}),
	}
	safe.SafeGo(log, r.sweeper)
	return r
}

// Admit registers a new, not yet authenticated connection.
func (r *Registry) Admit(c *Client) {
	now := r.conf.Clock()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Heartbeat = now
	c.TTL = r.conf.UnauthTTL
	c.ExpireAt = now.Add(r.conf.UnauthTTL)

	r.mu.Lock()
	r.byConn[c.ConnID] = c
	r.mu.Unlock()
}

// Authenticate binds the connection to userID and adds the id to the active
// set. An empty userID is a no-op. If the connection previously carried a
// different id, that id leaves the active set first. Reports whether the
// active set may have changed (callers broadcast the count on true).
func (r *Registry) Authenticate(c *Client, userID string) bool {
	if userID == "" {
		return false
	}
	now := r.conf.Clock()
	var evicted *Client

	r.mu.Lock()
	old := c.UserID
	if old != "" && old != userID {
		delete(r.active, old)
		r.unindexLocked(old, c.ConnID)
	}
	if r.conf.MaxPerUser > 0 {
		if _, already := r.byUser[userID][c.ConnID]; !already {
			evicted = r.ensureCapLocked(userID)
		}
	}

	c.UserID = userID
	c.Authorized = true
	c.TTL = r.conf.AuthTTL
	c.ExpireAt = now.Add(r.conf.AuthTTL)
	c.UpdatedAt = now

	m := r.byUser[userID]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[userID] = m
	}
	m[c.ConnID] = c
	r.active[userID] = struct{}{}
	r.mu.Unlock()

	if evicted != nil {
		r.log.Info("evicting oldest connection over per-user cap",
			zap.String("userId", userID), zap.String("connId", evicted.ConnID))
		evicted.Close()
	}
	return true
}

// Remove drops the connection from every index. Any close drops the user id
// from the active set, even if the same user still holds other live
// connections. Reports whether the connection carried a user id (callers
// broadcast the count on true).
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	if _, ok := r.byConn[c.ConnID]; !ok {
		// Already evicted or shut down; nothing left to drop.
		r.mu.Unlock()
		return false
	}
	delete(r.byConn, c.ConnID)
	had := c.UserID != ""
	if had {
		r.unindexLocked(c.UserID, c.ConnID)
		delete(r.active, c.UserID)
	}
	r.mu.Unlock()
	return had
}

// CurrentCount returns the number of distinct authenticated users.
func (r *Registry) CurrentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

// Snapshot lists every live connection, for count fan-out.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}

// ListByUser lists all connections currently bound to a user.
func (r *Registry) ListByUser(user string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[user]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// RefreshHeartbeat extends a connection's expiry; wired to the websocket
// pong handler.
func (r *Registry) RefreshHeartbeat(connID string) bool {
	now := r.conf.Clock()
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byConn[connID]
	if !ok {
		return false
	}
	c.Heartbeat = now
	c.ExpireAt = now.Add(c.TTL)
	c.UpdatedAt = now
	return true
}

// Close stops the sweeper and closes every connection.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.mu.Lock()
	conns := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		conns = append(conns, c)
	}
	r.byConn = make(map[string]*Client)
	r.byUser = make(map[string]map[string]*Client)
	r.active = make(map[string]struct{})
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// ===== 内部方法 =====

func (r *Registry) unindexLocked(user, connID string) {
	if m := r.byUser[user]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byUser, user)
		}
	}
}

// ensureCapLocked picks the oldest connection of user for eviction when the
// per-user cap is reached and drops it from the indexes. The caller closes
// it after releasing the lock; the user stays active through the new
// connection being authenticated.
func (r *Registry) ensureCapLocked(user string) *Client {
	m := r.byUser[user]
	if len(m) < r.conf.MaxPerUser || !r.conf.EvictOldest {
		return nil
	}
	var oldest *Client
	for _, c := range m {
		if oldest == nil || c.CreatedAt.Before(oldest.CreatedAt) {
			oldest = c
		}
	}
	if oldest != nil {
		delete(r.byConn, oldest.ConnID)
		r.unindexLocked(user, oldest.ConnID)
	}
	return oldest
}

// ===== 清理协程 =====

func (r *Registry) sweeper() {
	t := time.NewTicker(r.conf.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-t.C:
			r.sweepOnce(r.conf.Clock())
		}
	}
}

// sweepOnce closes expired connections. Index cleanup happens on the normal
// disconnect path once the closed socket unblocks its reader.
func (r *Registry) sweepOnce(now time.Time) []*Client {
	var expired []*Client
	r.mu.RLock()
	for _, c := range r.byConn {
		if now.After(c.ExpireAt) {
			expired = append(expired, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range expired {
		r.log.Info("closing expired connection",
			zap.String("connId", c.ConnID), zap.String("userId", c.UserID))
		c.Close()
	}
	return expired
}
