package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tracker_client"

// Collectors are created per client so independent sessions don't share counters.
type Collectors struct {
	Requests        *prometheus.CounterVec
	Refreshes       *prometheus.CounterVec
	SessionsExpired prometheus.Counter
}

func New() *Collectors {
	return &Collectors{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "api_requests_total", Help: "Remote API calls by method and status code."},
			[]string{"method", "code"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "token_refreshes_total", Help: "Refresh token exchanges by outcome."},
			[]string{"outcome"},
		),
		SessionsExpired: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "sessions_expired_total", Help: "Sessions torn down after an irrecoverable 401."},
		),
	}
}

func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.Requests, c.Refreshes, c.SessionsExpired} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collectors) ObserveRequest(method string, status int) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (c *Collectors) ObserveRefresh(ok bool) {
	if c == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	c.Refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collectors) ObserveExpiry() {
	if c == nil {
		return
	}
	c.SessionsExpired.Inc()
}
