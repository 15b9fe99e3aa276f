package router

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// APIKeyHeader is the header clients send the API key in.
const APIKeyHeader = "X-API-Key"

// unmatchedRoute is the route label for requests no route matched.
const unmatchedRoute = "unmatched"

// URLMiddleware stores the external base URL of the API in the context.
// Handlers use it to build links.
func URLMiddleware(url *url.URL) gin.HandlerFunc {
	base := url.String()

	return func(c *gin.Context) {
		c.Set(string(models.DBContextURL), base)
		c.Next()
	}
}

// APIKeyMiddleware rejects requests that do not carry the API key.
func APIKeyMiddleware(key string) gin.HandlerFunc {
	expected := []byte(key)

	return func(c *gin.Context) {
		// CORS preflight requests never carry custom headers
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if subtle.ConstantTimeCompare([]byte(c.GetHeader(APIKeyHeader)), expected) != 1 {
			log.Debug().Str("request-id", requestid.Get(c)).Msg("request without valid API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpError{
				Error: fmt.Sprintf("a valid API key must be sent in the %s header", APIKeyHeader),
			})
			return
		}

		c.Next()
	}
}

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by status code, method and route.",
		},
		[]string{"code", "method", "route"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tracker",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests, by status code, method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"code", "method", "route"},
	)
)

// registerMetrics registers the HTTP metrics with the default registry.
//
// The returned function unregisters them again. Registering twice
// without unregistering in between fails.
func registerMetrics() (func(), error) {
	collectors := []prometheus.Collector{httpRequests, httpDuration}

	for i, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			for _, registered := range collectors[:i] {
				prometheus.Unregister(registered)
			}

			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return func() {}, errors.New("HTTP metrics are already registered")
			}
			return func() {}, fmt.Errorf("could not register HTTP metrics: %w", err)
		}
	}

	return func() {
		for _, c := range collectors {
			if !prometheus.Unregister(c) {
				log.Error().Msg("could not unregister HTTP metrics")
			}
		}
	}, nil
}

// MetricsMiddleware records the count and latency of requests.
//
// Requests are labelled with their route pattern, e.g.
// /v1/budget/:month, not the concrete path.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		labels := prometheus.Labels{
			"code":   strconv.Itoa(c.Writer.Status()),
			"method": c.Request.Method,
			"route":  route,
		}

		httpDuration.With(labels).Observe(time.Since(start).Seconds())
		httpRequests.With(labels).Inc()
	}
}
