package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodhub"

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	Subscribers      prometheus.Gauge
	EventsEmitted    prometheus.Counter
	ListenerFailures prometheus.Counter

	StreamConnections prometheus.Gauge
	StreamDropped     *prometheus.CounterVec

	PaymentCallbacks *prometheus.CounterVec
	SideEffects      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "subscribers",
			Help:      "Listeners currently registered on the event bus.",
		}),
		EventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "events_emitted_total",
			Help:      "Events emitted on the event bus.",
		}),
		ListenerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "listener_failures_total",
			Help:      "Listener invocations that returned an error or panicked.",
		}),
		StreamConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "connections_open",
			Help:      "Open operator notification streams.",
		}),
		StreamDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "connections_closed_total",
			Help:      "Closed operator notification streams by reason.",
		}, []string{"reason"}),
		PaymentCallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "callbacks_total",
			Help:      "Payment gateway callbacks by outcome.",
		}, []string{"outcome"}),
		SideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "async",
			Name:      "side_effects_total",
			Help:      "Fire-and-forget side effects by name and result.",
		}, []string{"name", "result"}),
	}

	reg.MustRegister(
		m.Requests, m.LatencyMS,
		m.Subscribers, m.EventsEmitted, m.ListenerFailures,
		m.StreamConnections, m.StreamDropped,
		m.PaymentCallbacks, m.SideEffects,
	)
	return m
}

// NewNop returns metrics registered on a throwaway registry, for tests and
// tools that do not expose /metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by the chi route
// pattern, so /orders/1 and /orders/2 share a series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
