package health

import (
	"encoding/json"
	"net/http"
	"time"

	"iclvault/pkg/logger"
)

// ArtifactSource is the slice of the model registry the health endpoints
// need.
type ArtifactSource interface {
	Len() int
	Tags() []string
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	registry    ArtifactSource
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(log *logger.Logger, registry ArtifactSource, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		registry:    registry,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string   `json:"status"` // "healthy", "unhealthy"
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Uptime    string   `json:"uptime"`
	Timestamp string   `json:"timestamp"`
	Artifacts []string `json:"artifacts"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if the service can score: an empty registry
// means every prediction would fail, so the service reports not ready.
// Used by Kubernetes readiness probe
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.write(w)
}

// HandleHealth returns detailed health status including the registered
// artifact tags.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.write(w)
}

func (h *Handler) write(w http.ResponseWriter) {
	tags := h.registry.Tags()

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Artifacts: tags,
	}

	statusCode := http.StatusOK
	if h.registry.Len() == 0 {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Health check failed: registry is empty")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}
