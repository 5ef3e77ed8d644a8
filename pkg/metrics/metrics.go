// Package metrics exposes the Prometheus collectors shared by the HTTP layer,
// the gorm logger and the progress features.
//
// Label sets are kept bounded: HTTP paths use the registered gin route rather
// than the raw URL, and DB metrics use the SQL verb plus a table name.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lms_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation", "table"},
	)

	lessonViewsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_lesson_views_recorded_total",
			Help: "Lesson views written, by derived status.",
		},
		[]string{"status"},
	)

	statisticsDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lms_statistics_query_duration_seconds",
			Help:    "Duration of the product statistics aggregation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	catalogEntities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lms_catalog_entities",
			Help: "Number of stored rows per catalog entity.",
		},
		[]string{"entity"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		httpInflight,
		dbQueryDuration,
		lessonViewsRecorded,
		statisticsDuration,
		catalogEntities,
	)
}

// Middleware records request count, latency and in-flight requests.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordDBQuery observes the duration of a single SQL statement.
func RecordDBQuery(operation, table string, elapsed time.Duration) {
	dbQueryDuration.WithLabelValues(strings.ToUpper(operation), table).Observe(elapsed.Seconds())
}

// RecordLessonView counts a written lesson view under its derived status.
func RecordLessonView(status string) {
	lessonViewsRecorded.WithLabelValues(status).Inc()
}

// ObserveStatistics records how long a statistics aggregation took.
func ObserveStatistics(elapsed time.Duration) {
	statisticsDuration.Observe(elapsed.Seconds())
}

// SetCatalogSize publishes the current row count of a catalog entity.
func SetCatalogSize(entity string, count int64) {
	catalogEntities.WithLabelValues(entity).Set(float64(count))
}
