// Package registry discovers and holds the versioned collection of
// trained model artifacts. Artifacts are immutable once registered: a
// retrained model is a new directory with a new version tag, never an
// edit in place.
package registry

// SizeClassifier predicts a probability per manufactured lens size.
type SizeClassifier interface {
	Probabilities(features []float64) ([]float64, error)
}

// VaultRegressor predicts the post-operative vault in µm.
type VaultRegressor interface {
	Predict(features []float64) (float64, error)
}

// FeatureScaler standardizes a feature row before inference.
type FeatureScaler interface {
	Transform(row []float64) ([]float64, error)
}

// Artifact is one immutable bundle of trained models. Safe for
// unsynchronized concurrent reads; scoring holds no mutable state.
type Artifact struct {
	// Tag is the unique version tag, e.g. "gestalt-27f-756c".
	Tag string

	// Description is free-text metadata from the manifest.
	Description string

	// Features is the ordered feature-name list this artifact consumes.
	// Always a subset of the engineered vector's keys.
	Features []string

	// VaultMargin is the half-width of the reported vault range in µm,
	// derived from this artifact's historical MAE. Per-artifact
	// configuration, never a global constant.
	VaultMargin float64

	Classifier       SizeClassifier
	ClassifierScaler FeatureScaler
	Regressor        VaultRegressor
	RegressorScaler  FeatureScaler
}

// FeatureCount returns the length of the declared feature list.
func (a *Artifact) FeatureCount() int {
	return len(a.Features)
}
