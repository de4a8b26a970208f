// Package predict is the scoring core: it routes a derived feature
// vector to the production artifact, runs comparison scoring across the
// whole registry, and assembles calibrated user-facing results.
package predict

import "strconv"

// RiskFlag is the three-valued vault risk classification against the
// device's acceptable clearance range.
type RiskFlag string

const (
	RiskLow  RiskFlag = "low"
	RiskOK   RiskFlag = "ok"
	RiskHigh RiskFlag = "high"
)

// SizeOption is one lens size with its predicted probability.
type SizeOption struct {
	SizeMm      float64 `json:"size_mm"`
	Probability float64 `json:"probability"`
}

// Advisory is a clinician-style post-processing note. Advisories never
// change the model output.
type Advisory struct {
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`
}

// Prediction is one artifact's assembled result for one eye.
type Prediction struct {
	ArtifactTag  string `json:"artifact_tag"`
	Description  string `json:"description,omitempty"`
	FeatureCount int    `json:"declared_feature_count"`

	LensSizeMm      float64 `json:"lens_size_mm"`
	LensProbability float64 `json:"lens_probability"`
	// Full distribution over the four manufactured sizes, keyed by size.
	SizeProbabilities map[string]float64 `json:"size_probabilities"`
	// Options above the reporting floor, highest probability first.
	Options []SizeOption `json:"lens_options"`

	VaultPredUm  float64    `json:"vault_pred_um"`
	VaultRangeUm [2]float64 `json:"vault_range_um"`
	VaultFlag    RiskFlag   `json:"vault_flag"`

	Advisories []Advisory `json:"advisories,omitempty"`
}

// Outcome is one comparison slot: exactly one of Result or Err is set.
type Outcome struct {
	Tag    string
	Result *Prediction
	Err    error
}

// sizeKey formats a lens size the way the training pipeline labels
// classes, e.g. "12.6".
func sizeKey(size float64) string {
	return strconv.FormatFloat(size, 'f', 1, 64)
}
