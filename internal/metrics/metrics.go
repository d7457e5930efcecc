package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// HTTP counts served requests by status class.
type HTTP struct {
	started time.Time

	Total       Counter
	Success     Counter // 2xx and 3xx
	ClientError Counter // 4xx
	ServerError Counter // 5xx
	RateLimited Counter
}

func NewHTTP() *HTTP {
	return &HTTP{started: time.Now()}
}

func (m *HTTP) Observe(status int) {
	m.Total.Inc()
	switch {
	case status >= 500:
		m.ServerError.Inc()
	case status == 429:
		m.RateLimited.Inc()
		m.ClientError.Inc()
	case status >= 400:
		m.ClientError.Inc()
	default:
		m.Success.Inc()
	}
}

type Snapshot struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Total         uint64 `json:"total"`
	Success       uint64 `json:"success"`
	ClientError   uint64 `json:"clientError"`
	ServerError   uint64 `json:"serverError"`
	RateLimited   uint64 `json:"rateLimited"`
}

func (m *HTTP) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Total:         m.Total.Load(),
		Success:       m.Success.Load(),
		ClientError:   m.ClientError.Load(),
		ServerError:   m.ServerError.Load(),
		RateLimited:   m.RateLimited.Load(),
	}
}
