package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfptracker_notifications_total",
			Help: "Notification attempts by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	DeadlineScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfptracker_deadline_scans_total",
			Help: "CFP deadline scan runs by result",
		},
		[]string{"result"},
	)

	DeadlineScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cfptracker_deadline_scan_duration_seconds",
			Help:    "Duration of CFP deadline scan runs",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cfptracker_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
