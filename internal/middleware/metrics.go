package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActiveWebSockets tracks currently open websocket handler invocations.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ripple_active_websockets",
	Help: "Number of active WebSocket handler goroutines",
})

// InitMetrics creates the per-route Prometheus HTTP middleware.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
