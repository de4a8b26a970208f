package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iclvault/internal/domain/patient"
	"iclvault/internal/predict"
	"iclvault/pkg/errors"
	"iclvault/pkg/logger"
)

type fakeScorer struct {
	prediction *predict.Prediction
	outcomes   []predict.Outcome
	err        error
	gotInput   patient.MeasurementSet
}

func (f *fakeScorer) Predict(ctx context.Context, m patient.MeasurementSet) (*predict.Prediction, error) {
	f.gotInput = m
	return f.prediction, f.err
}

func (f *fakeScorer) CompareAll(ctx context.Context, m patient.MeasurementSet) ([]predict.Outcome, error) {
	f.gotInput = m
	return f.outcomes, f.err
}

const validBody = `{
	"Age": 30,
	"WTW": 11.8,
	"ACD_internal": 3.2,
	"ICL_Power": -9.5,
	"AC_shape_ratio": 55.0,
	"SimK_steep": 44.0,
	"ACV": 180.0,
	"TCRP_Km": 43.5,
	"TCRP_Astigmatism": 1.0
}`

func newTestHandler(scorer Scorer) *PredictHandler {
	return NewPredictHandler(scorer, logger.Get())
}

func doRequest(t *testing.T, h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/predict", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlePredict(t *testing.T) {
	scorer := &fakeScorer{prediction: &predict.Prediction{
		ArtifactTag: "gestalt-24f-756c",
		LensSizeMm:  12.6,
		VaultFlag:   predict.RiskOK,
	}}
	h := newTestHandler(scorer)

	rec := doRequest(t, h.HandlePredict, http.MethodPost, validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp predict.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gestalt-24f-756c", resp.ArtifactTag)
	assert.Equal(t, 12.6, resp.LensSizeMm)

	// The handler forwards the parsed measurements untouched.
	assert.Equal(t, 11.8, scorer.gotInput.WTW)
	assert.Equal(t, -9.5, scorer.gotInput.ICLPower)
}

func TestHandlePredict_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&fakeScorer{})

	rec := doRequest(t, h.HandlePredict, http.MethodGet, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlePredict_MalformedJSON(t *testing.T) {
	h := newTestHandler(&fakeScorer{})

	rec := doRequest(t, h.HandlePredict, http.MethodPost, "{oops")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePredict_MissingFields(t *testing.T) {
	h := newTestHandler(&fakeScorer{})

	rec := doRequest(t, h.HandlePredict, http.MethodPost, `{"Age": 30, "WTW": 11.8}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "ACD_internal")
}

func TestHandlePredict_ZeroIsNotMissing(t *testing.T) {
	// An explicit zero passes presence validation; downstream domain
	// validation decides whether it is usable.
	scorer := &fakeScorer{prediction: &predict.Prediction{LensSizeMm: 12.1}}
	h := newTestHandler(scorer)

	body := strings.Replace(validBody, `"TCRP_Astigmatism": 1.0`, `"TCRP_Astigmatism": 0`, 1)
	rec := doRequest(t, h.HandlePredict, http.MethodPost, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, scorer.gotInput.TCRPAstigmatism)
}

func TestHandlePredict_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errors.NewValidationError("ACV", "must be non-zero", 0.0), http.StatusBadRequest},
		{"artifact missing", errors.Wrap(errors.ErrArtifactNotFound, "tag x"), http.StatusServiceUnavailable},
		{"timeout", errors.Wrap(errors.ErrTimeout, "artifact x"), http.StatusGatewayTimeout},
		{"internal", errors.New("scaler blew up"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeScorer{err: tt.err})
			rec := doRequest(t, h.HandlePredict, http.MethodPost, validBody)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleCompare(t *testing.T) {
	scorer := &fakeScorer{outcomes: []predict.Outcome{
		{Tag: "alpha", Result: &predict.Prediction{ArtifactTag: "alpha", LensSizeMm: 12.6}},
		{Tag: "beta", Err: errors.Wrap(errors.ErrScoringFailed, "bad weights")},
	}}
	h := newTestHandler(scorer)

	rec := doRequest(t, h.HandleCompare, http.MethodPost, validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 2)

	assert.Equal(t, "alpha", resp.Outcomes[0].ArtifactTag)
	assert.NotNil(t, resp.Outcomes[0].Result)
	assert.Empty(t, resp.Outcomes[0].ErrorMessage)

	assert.Equal(t, "beta", resp.Outcomes[1].ArtifactTag)
	assert.Nil(t, resp.Outcomes[1].Result)
	assert.Contains(t, resp.Outcomes[1].ErrorMessage, "bad weights")
}

func TestHandleCompare_ValidationError(t *testing.T) {
	h := newTestHandler(&fakeScorer{err: errors.NewValidationError("WTW", "must be non-zero", 0.0)})

	rec := doRequest(t, h.HandleCompare, http.MethodPost, validBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
