package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Shift metrics
	ClockInsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shifttrack_clock_ins_total",
			Help: "Total number of successful clock-ins",
		},
	)

	ClockOutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shifttrack_clock_outs_total",
			Help: "Total number of successful clock-outs",
		},
	)

	ClockRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifttrack_clock_rejections_total",
			Help: "Rejected clock-in/clock-out attempts by operation and reason",
		},
		[]string{"operation", "reason"},
	)

	OpenShifts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shifttrack_open_shifts",
			Help: "Number of shifts currently open",
		},
	)

	PerimeterUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shifttrack_perimeter_updates_total",
			Help: "Total number of perimeter replacements",
		},
	)

	// Storage metrics
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shifttrack_store_operation_duration_seconds",
			Help:    "Storage call duration in seconds by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// API metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifttrack_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shifttrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Live feed
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shifttrack_websocket_clients",
			Help: "Number of authenticated websocket clients",
		},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shifttrack_events_published_total",
			Help: "Events published to the message broker by routing key and result",
		},
		[]string{"routing_key", "result"},
	)
)

func init() {
	prometheus.MustRegister(ClockInsTotal)
	prometheus.MustRegister(ClockOutsTotal)
	prometheus.MustRegister(ClockRejectionsTotal)
	prometheus.MustRegister(OpenShifts)
	prometheus.MustRegister(PerimeterUpdatesTotal)
	prometheus.MustRegister(StoreOperationDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(WebSocketClients)
	prometheus.MustRegister(EventsPublishedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer измеряет длительность операции
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration записывает длительность в секундах
func (t *Timer) ObserveDuration(o prometheus.Observer) {
	o.Observe(t.Duration().Seconds())
}
