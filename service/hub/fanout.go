package hub

import (
	"go.uber.org/zap"

	"PingHub/tools/safe"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout spreads one payload across many connections off the caller's
// goroutine. The count broadcast runs through a single worker so count
// frames keep their relative order.
type Fanout struct {
	jobs chan fanoutJob
	log  *zap.Logger
}

func NewFanout(workers, queue int, log *zap.Logger) *Fanout {
	f := &Fanout{jobs: make(chan fanoutJob, queue), log: log}
	for i := 0; i < workers; i++ {
		safe.SafeGo(log, func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					// Slow client: skip, next count frame catches it up
					_ = c.Enqueue(job.payload)
				}
			}
		})
	}
	return f
}

func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	select {
	case f.jobs <- fanoutJob{conns: conns, payload: payload}:
	default:
		f.log.Warn("fanout queue full, dropping broadcast")
	}
}
