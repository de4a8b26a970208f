package api

import (
	"context"
	"encoding/json"
	"net/http"

	"iclvault/internal/domain/patient"
	"iclvault/internal/predict"
	"iclvault/pkg/errors"
	"iclvault/pkg/logger"
)

// Scorer is the prediction surface the HTTP layer depends on.
type Scorer interface {
	Predict(ctx context.Context, m patient.MeasurementSet) (*predict.Prediction, error)
	CompareAll(ctx context.Context, m patient.MeasurementSet) ([]predict.Outcome, error)
}

// PredictHandler serves the two scoring endpoints.
type PredictHandler struct {
	scorer Scorer
	log    *logger.Logger
}

// NewPredictHandler creates the scoring handler.
func NewPredictHandler(scorer Scorer, log *logger.Logger) *PredictHandler {
	return &PredictHandler{
		scorer: scorer,
		log:    log.With("component", "api"),
	}
}

// HandlePredict handles POST /predict: routed single-model scoring.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMeasurement(w, r)
	if !ok {
		return
	}

	result, err := h.scorer.Predict(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleCompare handles POST /predict/compare: every registered
// artifact scores the same measurements, per-artifact failures included
// in the payload.
func (h *PredictHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMeasurement(w, r)
	if !ok {
		return
	}

	outcomes, err := h.scorer.CompareAll(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := CompareResponse{Outcomes: make([]CompareSlot, len(outcomes))}
	for i, o := range outcomes {
		slot := CompareSlot{ArtifactTag: o.Tag}
		if o.Err != nil {
			slot.ErrorMessage = o.Err.Error()
		} else {
			slot.Result = o.Result
		}
		resp.Outcomes[i] = slot
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeMeasurement parses and validates the request body. On failure it
// writes the error response and returns ok=false.
func (h *PredictHandler) decodeMeasurement(w http.ResponseWriter, r *http.Request) (patient.MeasurementSet, bool) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return patient.MeasurementSet{}, false
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return patient.MeasurementSet{}, false
	}

	m, err := req.toMeasurement()
	if err != nil {
		h.writeError(w, r, err)
		return patient.MeasurementSet{}, false
	}

	return m, true
}

// writeError maps domain errors to HTTP status codes. Validation
// failures are the caller's fault; everything else is ours.
func (h *PredictHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidation(err) || errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrArtifactNotFound) || errors.Is(err, errors.ErrRegistryEmpty):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		h.log.ErrorWithContext(r.Context(), err, map[string]string{"path": r.URL.Path})
	} else {
		h.log.Debugf("Request rejected (%d): %v", status, err)
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
