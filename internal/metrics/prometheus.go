package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scoring metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iclvault_predictions_total",
			Help: "Total number of scored predictions",
		},
		[]string{"artifact", "mode", "status"}, // mode: routed|compare; status: success|error
	)

	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iclvault_prediction_duration_seconds",
			Help:    "Single-artifact scoring duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"artifact"},
	)

	ValidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "iclvault_validation_failures_total",
			Help: "Total number of requests rejected by input validation",
		},
	)

	// Registry metrics
	RegistryArtifacts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "iclvault_registry_artifacts",
			Help: "Number of artifacts registered after discovery",
		},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iclvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iclvault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"path"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(Predictions)
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(ValidationFailures)
	prometheus.MustRegister(RegistryArtifacts)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(path string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordPrediction records one artifact scoring attempt
func RecordPrediction(artifact, mode string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	Predictions.WithLabelValues(artifact, mode, status).Inc()
	PredictionDuration.WithLabelValues(artifact).Observe(duration.Seconds())
}
