package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	sectionSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_section_saves_total",
		Help: "Section saves by section and outcome",
	}, []string{"section", "outcome"})

	exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_exports_total",
		Help: "PDF exports by outcome",
	}, []string{"outcome"})

	resumesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resumes_created_total",
		Help: "Resumes created from a template",
	})

	exportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_export_duration_seconds",
		Help:    "PDF export duration in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
)

func init() {
	registry.MustRegister(
		sectionSaves,
		exports,
		resumesCreated,
		exportDuration,
		httpRequests,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// IncSectionSave records a section save attempt outcome ("ok", "failed", "busy").
func IncSectionSave(section, outcome string) {
	sectionSaves.WithLabelValues(section, outcome).Inc()
}

// IncExport records a PDF export outcome.
func IncExport(outcome string) {
	exports.WithLabelValues(outcome).Inc()
}

// IncResumeCreated increments the created counter.
func IncResumeCreated() {
	resumesCreated.Inc()
}

// ObserveExportDuration records how long an export took.
func ObserveExportDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	exportDuration.Observe(d.Seconds())
}

// ObserveRequest counts a finished HTTP request.
func ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// Gatherer is exposed for tests.
func Gatherer() prometheus.Gatherer {
	return registry
}
