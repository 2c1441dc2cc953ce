package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvb_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pvb_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvb_orders_submitted_total",
			Help: "Job-update orders submitted, by change type.",
		},
		[]string{"change_type"},
	)

	OrderStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvb_order_status_changes_total",
			Help: "Order status changes by target state and whether the transition was legal.",
		},
		[]string{"to", "legal"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pvb_cache_lookups_total",
			Help: "Read cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)
)

// Middleware records request count and latency per registered route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
