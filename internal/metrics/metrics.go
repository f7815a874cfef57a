package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"storefront-be/internal/utils"
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
	Requests     Counter
	ClientErrors Counter
	ServerErrors Counter
	RateLimited  Counter

	uptime *Timer
}

func NewHTTP() *HTTP {
	return &HTTP{uptime: StartTimer()}
}

func (m *HTTP) Observe(status int) {
	m.Requests.Inc()
	switch {
	case status == http.StatusTooManyRequests:
		m.RateLimited.Inc()
		m.ClientErrors.Inc()
	case status >= 500:
		m.ServerErrors.Inc()
	case status >= 400:
		m.ClientErrors.Inc()
	}
}

type Snapshot struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Requests      uint64 `json:"requests"`
	ClientErrors  uint64 `json:"clientErrors"`
	ServerErrors  uint64 `json:"serverErrors"`
	RateLimited   uint64 `json:"rateLimited"`
}

func (m *HTTP) Snapshot() Snapshot {
	return Snapshot{
		Status:        "ok",
		UptimeSeconds: int64(m.uptime.Duration().Seconds()),
		Requests:      m.Requests.Load(),
		ClientErrors:  m.ClientErrors.Load(),
		ServerErrors:  m.ServerErrors.Load(),
		RateLimited:   m.RateLimited.Load(),
	}
}

// HandleHealth reports liveness together with the request counters.
func (m *HTTP) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, m.Snapshot())
}
