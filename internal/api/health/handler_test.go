package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iclvault/pkg/logger"
)

type fakeSource struct {
	tags []string
}

func (f fakeSource) Len() int       { return len(f.tags) }
func (f fakeSource) Tags() []string { return f.tags }

func TestHandleLiveness(t *testing.T) {
	h := New(logger.Get(), fakeSource{}, "iclvault", "test")

	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadiness(t *testing.T) {
	h := New(logger.Get(), fakeSource{tags: []string{"gestalt-24f-756c"}}, "iclvault", "test")

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, []string{"gestalt-24f-756c"}, status.Artifacts)
}

func TestHandleReadiness_EmptyRegistry(t *testing.T) {
	h := New(logger.Get(), fakeSource{}, "iclvault", "test")

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
}
