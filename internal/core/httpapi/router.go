// Package httpapi serves the customer-facing simulator over HTTP.
package httpapi

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shutterbook/simulator/internal/simulator"
)

// Simulator computes quotes. Implemented by *simulator.Simulator.
type Simulator interface {
	Simulate(ctx context.Context, req simulator.Request) (*simulator.Result, error)
}

// Pinger reports database reachability. Implemented by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler holds the dependencies of the public API routes.
type Handler struct {
	sim    Simulator
	db     Pinger
	logger zerolog.Logger
}

// NewRouter builds the public API. db may be nil when no database backs the
// simulator; /health then reports "not configured".
func NewRouter(sim Simulator, db Pinger, limiter *IPRateLimiter, logger zerolog.Logger) *gin.Engine {
	h := &Handler{
		sim:    sim,
		db:     db,
		logger: logger.With().Str("component", "http").Logger(),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter))
	}
	{
		v1.POST("/shops/:shopId/simulate", h.Simulate)
	}

	return router
}

// requestLogger logs every request and feeds the HTTP metrics.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpLatency.WithLabelValues(route).Observe(latency.Seconds())

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
