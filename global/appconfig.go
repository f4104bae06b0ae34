package global

import (
	"time"

	"PingHub/tools"
)

type AppConfig struct {
	NodeId int64 // 节点的Id（雪花ID nodeID，0~1023）
	Port   int   // http 启动端口

	AllowedOrigins []string // 允许的 Origin；为空则不限制
	JWTSecret      string   // 为空则不启用 token 校验与 admin API

	SendQueueSize  int   // 每连接发送队列长度
	MaxMessageSize int64 // 单帧上限（字节）

	UnauthTTL  time.Duration // 未授权连接的 TTL
	AuthTTL    time.Duration // 已授权连接的 TTL
	SweepEvery time.Duration // 过期连接清理周期

	MaxPerUser  int  // 每用户最大连接数（<=0 不限制）
	EvictOldest bool // 超限时是否淘汰最老连接

	FanoutWorkers int // 全局 count 广播的 worker 数
	FanoutQueue   int // 广播任务队列长度

	DevTokenEndpoint bool // 是否开放 /api/token（开发期模拟身份服务）
}

// Load reads the configuration from environment variables, falling back to
// defaults that keep a single node usable out of the box.
func Load() *AppConfig {
	cfg := &AppConfig{
		NodeId: tools.GetEnvInt64("NODE_ID", 1),
		Port:   tools.GetEnvInt("HTTP_PORT", 3000),

		AllowedOrigins: tools.GetEnvList("ALLOWED_ORIGINS", nil),
		JWTSecret:      tools.GetEnv("JWT_SECRET", ""),

		SendQueueSize:  tools.GetEnvInt("SEND_QUEUE_SIZE", 256),
		MaxMessageSize: tools.GetEnvInt64("MAX_MESSAGE_SIZE", 4096),

		UnauthTTL:  tools.GetEnvDuration("UNAUTH_TTL", 300*time.Second),
		AuthTTL:    tools.GetEnvDuration("AUTH_TTL", 2*time.Hour),
		SweepEvery: tools.GetEnvDuration("SWEEP_EVERY", 10*time.Second),

		MaxPerUser:  tools.GetEnvInt("MAX_PER_USER", 0),
		EvictOldest: tools.GetEnvBool("EVICT_OLDEST", true),

		FanoutWorkers: tools.GetEnvInt("FANOUT_WORKERS", 1),
		FanoutQueue:   tools.GetEnvInt("FANOUT_QUEUE", 1024),

		DevTokenEndpoint: tools.GetEnvBool("DEV_TOKEN_ENDPOINT", false),
	}
	return cfg.sanitize()
}

// Default returns the built-in defaults without consulting the environment,
// mainly for tests.
func Default() *AppConfig {
	cfg := &AppConfig{
		NodeId:         1,
		Port:           3000,
		SendQueueSize:  256,
		MaxMessageSize: 4096,
		UnauthTTL:      300 * time.Second,
		AuthTTL:        2 * time.Hour,
		SweepEvery:     10 * time.Second,
		EvictOldest:    true,
		FanoutWorkers:  1,
		FanoutQueue:    1024,
	}
	return cfg.sanitize()
}

func (c *AppConfig) sanitize() *AppConfig {
	if c.Port <= 0 {
		c.Port = 3000
	}
	if c.NodeId < 0 || c.NodeId > 1023 {
		c.NodeId = 1
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if c.UnauthTTL <= 0 {
		c.UnauthTTL = 300 * time.Second
	}
	if c.AuthTTL <= 0 {
		c.AuthTTL = 2 * time.Hour
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 10 * time.Second
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 1
	}
	if c.FanoutQueue <= 0 {
		c.FanoutQueue = 1024
	}
	return c
}
