package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported by the service.
type Metrics struct {
	service string

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	authEvents        *prometheus.CounterVec
	productsCreated   prometheus.Counter
	attributesCreated prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(service string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: service,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		authEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Registration and login attempts by outcome",
			},
			[]string{"event", "result"},
		),
		productsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "products_created_total",
			Help: "Products added to the catalog",
		}),
		attributesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "product_attributes_created_total",
			Help: "Dynamic attributes created on first use",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.authEvents, m.productsCreated, m.attributesCreated)
	return m
}

// Middleware records request count and latency. Must run after the error
// handler has rendered the response, i.e. be registered before the logger.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			path = r.Path
		}
		status := strconv.Itoa(c.Response().StatusCode())

		m.requests.WithLabelValues(m.service, c.Method(), path, status).Inc()
		m.duration.WithLabelValues(m.service, c.Method(), path, status).Observe(time.Since(start).Seconds())
		return err
	}
}

// AuthEvent counts a register or login attempt.
func (m *Metrics) AuthEvent(event string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.authEvents.WithLabelValues(event, result).Inc()
}

// ProductCreated counts a stored product and the attributes it introduced.
func (m *Metrics) ProductCreated(newAttributes int) {
	if m == nil {
		return
	}
	m.productsCreated.Inc()
	m.attributesCreated.Add(float64(newAttributes))
}

// Handler exposes the registry in the prometheus text format.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
