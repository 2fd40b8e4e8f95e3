package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotel"

// Booking outcomes recorded by the engine.
const (
	OutcomeCreated   = "created"
	OutcomeConflict  = "conflict"
	OutcomeUpdated   = "updated"
	OutcomeCancelled = "cancelled"
	OutcomeCompleted = "completed"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking lifecycle events by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers the collectors with the default registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookings)
	})
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Recorder receives booking outcomes. The engine depends on this instead of the globals.
type Recorder interface {
	BookingOutcome(outcome string)
}

type Prometheus struct{}

func (Prometheus) BookingOutcome(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

type Nop struct{}

func (Nop) BookingOutcome(string) {}
