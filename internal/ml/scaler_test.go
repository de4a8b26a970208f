package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScalerFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scaler.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScaler(t *testing.T) {
	path := writeScalerFile(t, `{"mean": [1.0, 2.0], "scale": [0.5, 4.0]}`)

	s, err := LoadScaler(path)
	require.NoError(t, err)

	out, err := s.Transform([]float64{2.0, 10.0})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out[0], 1e-12)
	assert.InDelta(t, 2.0, out[1], 1e-12)
}

func TestLoadScaler_LengthMismatch(t *testing.T) {
	path := writeScalerFile(t, `{"mean": [1.0, 2.0], "scale": [0.5]}`)

	_, err := LoadScaler(path)
	assert.Error(t, err)
}

func TestLoadScaler_MissingFile(t *testing.T) {
	_, err := LoadScaler(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestStandardScaler_Transform_WrongWidth(t *testing.T) {
	s := &StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}

	_, err := s.Transform([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestStandardScaler_Transform_ZeroScale(t *testing.T) {
	// Zero-variance features pass through centered, not divided by zero.
	s := &StandardScaler{Mean: []float64{5}, Scale: []float64{0}}

	out, err := s.Transform([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 2.0, out[0])
}
