package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	rateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total requests rejected by the per-IP rate limiter",
	})

	checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by kind and outcome",
	}, []string{"kind", "outcome"}) // kind=cart|subscription, outcome=success|rejected

	cateringRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "catering_requests_total",
		Help:      "Catering requests submitted",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "notifications_total",
		Help:      "Admin notifications by outcome",
	}, []string{"outcome"}) // outcome=sent|dropped|failed
)

func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func RecordRateLimited() {
	rateLimitExceeded.Inc()
}

func RecordCheckout(kind string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "rejected"
	}
	checkouts.WithLabelValues(kind, outcome).Inc()
}

func RecordCateringRequest() {
	cateringRequests.Inc()
}

func RecordNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}
