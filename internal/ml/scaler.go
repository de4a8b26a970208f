package ml

import (
	"encoding/json"
	"os"

	"iclvault/pkg/errors"
)

// StandardScaler applies the per-feature standardization fitted at
// training time: (x - mean) / scale, in declared feature order.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads scaler parameters from a JSON file.
func LoadScaler(path string) (*StandardScaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scaler file")
	}

	var s StandardScaler
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode scaler file")
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, errors.Newf("scaler mean/scale length mismatch: %d vs %d", len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

// Transform standardizes a feature row. The row length must match the
// fitted dimensionality.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, errors.Newf("scaler expects %d features, got %d", len(s.Mean), len(row))
	}

	out := make([]float64, len(row))
	for i, x := range row {
		scale := s.Scale[i]
		if scale == 0 {
			// Zero-variance feature: pass the centered value through,
			// matching the training library's behavior.
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}
