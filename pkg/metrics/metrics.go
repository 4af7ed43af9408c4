package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the Prometheus collectors of the service on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	generations     *prometheus.CounterVec
	generationTime  prometheus.Histogram
	milestones      prometheus.Histogram
	cacheRequests   *prometheus.CounterVec
	jobs            *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_generations_total",
			Help: "Roadmap generations by outcome.",
		}, []string{"outcome"}),
		generationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_generation_duration_seconds",
			Help:    "Time spent assembling a roadmap.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
		}),
		milestones: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_milestones",
			Help:    "Milestones per generated roadmap.",
			Buckets: []float64{0, 1, 2, 4, 8, 12, 16, 25},
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_cache_requests_total",
			Help: "Roadmap cache lookups by result.",
		}, []string{"result"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_jobs_total",
			Help: "Asynchronous roadmap jobs by terminal status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.generations,
		r.generationTime,
		r.milestones,
		r.cacheRequests,
		r.jobs,
		r.httpRequests,
		r.httpRequestTime,
	)
	return r
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the exposition format for this registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveGeneration records one engine run.
func (r *Recorder) ObserveGeneration(outcome string, elapsed time.Duration, milestones int) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		r.generationTime.Observe(elapsed.Seconds())
		r.milestones.Observe(float64(milestones))
	}
}

// ObserveCache records a cache hit, miss or error.
func (r *Recorder) ObserveCache(result string) {
	if r == nil {
		return
	}
	r.cacheRequests.WithLabelValues(result).Inc()
}

// ObserveJob records a job reaching a terminal status.
func (r *Recorder) ObserveJob(status string) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(status).Inc()
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpRequestTime.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
