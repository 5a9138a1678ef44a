package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/nbazarov/teamforge/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "teamforge",
		Name:      "registrations_total",
		Help:      "Total successful user registrations.",
	})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamforge",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	// Project metrics

	ProjectWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamforge",
		Name:      "project_writes_total",
		Help:      "Total project mutations, by operation.",
	}, []string{"op"})

	// Entity-count gauges, sampled by the stats collector.

	UsersCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamforge",
		Name:      "users_count",
		Help:      "Number of registered users.",
	})

	ProjectsCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamforge",
		Name:      "projects_count",
		Help:      "Number of projects.",
	})

	VacanciesCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamforge",
		Name:      "vacancies_count",
		Help:      "Number of vacancies.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamforge",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamforge",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		LoginsTotal,
		ProjectWritesTotal,
		UsersCount,
		ProjectsCount,
		VacanciesCount,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer exposes Prometheus metrics plus liveness/readiness probes on a
// separate port, away from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
