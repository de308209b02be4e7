package corsproxy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcome is the final state reached by a relayed request
type outcome string

const (
	preflight outcome = "preflight"
	usage     outcome = "usage"
	denied    outcome = "denied"
	relayed   outcome = "relayed"
	failed    outcome = "failed"
)

var latencyBuckets = []float64{
	.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30,
}

// Metrics of the requests served by a Relay. A nil *Metrics
// records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics registers the relay collectors in reg. With a nil
// reg they're created but not registered.
func NewMetrics(reg prometheus.Registerer) (m *Metrics) {
	f := promauto.With(reg)
	m = &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corsproxy_requests_total",
				Help: "Requests served, by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		upstream: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corsproxy_upstream_seconds",
				Help:    "Time until the target answered or failed",
				Buckets: latencyBuckets,
			},
			[]string{"outcome"},
		),
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "corsproxy_upstream_in_flight",
				Help: "Outbound requests waiting for the target",
			},
		),
	}
	return
}

func (m *Metrics) served(method string, o outcome) {
	if m != nil {
		m.requests.WithLabelValues(method, string(o)).Inc()
	}
}

// fetching marks the start of an outbound request. The
// returned function marks its end.
func (m *Metrics) fetching(clock func() time.Time) (done func(outcome)) {
	start := clock()
	if m != nil {
		m.inFlight.Inc()
	}
	done = func(o outcome) {
		if m != nil {
			m.inFlight.Dec()
			m.upstream.WithLabelValues(string(o)).
				Observe(clock().Sub(start).Seconds())
		}
	}
	return
}
