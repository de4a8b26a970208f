package predict

import (
	"context"
	"fmt"
	"time"

	"iclvault/internal/domain/patient"
	"iclvault/internal/features"
	"iclvault/internal/metrics"
	"iclvault/internal/registry"
	"iclvault/pkg/errors"
	"iclvault/pkg/logger"
)

// Service wires the feature engineer, router and registry into the two
// scoring operations: routed single-model prediction and all-models
// comparison.
type Service struct {
	registry *registry.Registry
	router   Router
	log      *logger.Logger

	// Comparison settings
	maxConcurrency  int
	artifactTimeout time.Duration
}

// NewService creates the scoring service.
func NewService(reg *registry.Registry, router Router, maxConcurrency int, artifactTimeout time.Duration, log *logger.Logger) *Service {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Service{
		registry:        reg,
		router:          router,
		log:             log.With("component", "predict"),
		maxConcurrency:  maxConcurrency,
		artifactTimeout: artifactTimeout,
	}
}

// Predict derives features, routes to the production artifact and scores
// it. Validation errors abort immediately; a scoring error is fatal here
// since routed mode has no fallback artifact.
func (s *Service) Predict(ctx context.Context, m patient.MeasurementSet) (*Prediction, error) {
	vec, err := features.Derive(m)
	if err != nil {
		metrics.ValidationFailures.Inc()
		return nil, err
	}

	tag := s.router.Route(vec)
	artifact, err := s.registry.Get(tag)
	if err != nil {
		return nil, errors.Wrapf(err, "routed artifact %q unavailable", tag)
	}

	start := time.Now()
	result, err := scoreArtifact(artifact, vec)
	metrics.RecordPrediction(tag, "routed", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result.Advisories = advisories(m, result)
	return result, nil
}

// scoreArtifact selects the artifact's declared feature subset, scales,
// runs both models and assembles the result. Shared by the routed and
// comparison paths.
func scoreArtifact(a *registry.Artifact, vec *features.Vector) (*Prediction, error) {
	row, err := vec.Select(a.Features)
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s", a.Tag)
	}

	classRow, err := a.ClassifierScaler.Transform(row)
	if err != nil {
		return nil, errors.Wrap(errors.ErrScoringFailed, err.Error())
	}
	probs, err := a.Classifier.Probabilities(classRow)
	if err != nil {
		return nil, errors.Wrap(errors.ErrScoringFailed, err.Error())
	}

	vaultRow, err := a.RegressorScaler.Transform(row)
	if err != nil {
		return nil, errors.Wrap(errors.ErrScoringFailed, err.Error())
	}
	vault, err := a.Regressor.Predict(vaultRow)
	if err != nil {
		return nil, errors.Wrap(errors.ErrScoringFailed, err.Error())
	}

	result, err := Assemble(probs, vault, a.VaultMargin)
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s", a.Tag)
	}

	result.ArtifactTag = a.Tag
	result.Description = a.Description
	result.FeatureCount = a.FeatureCount()
	return result, nil
}

// advisories applies the clinician-style post-processing rules. They
// annotate the result and never change the model's recommendation.
func advisories(m patient.MeasurementSet, p *Prediction) []Advisory {
	var out []Advisory

	// Soft white-to-white cap: sizes beyond WTW+1 mm get a conservative
	// alternative when a smaller manufactured size fits under the cap.
	softCap := m.WTW + 1.0
	if p.LensSizeMm > softCap {
		alternative := 0.0
		for _, size := range features.LensSizes {
			if size <= softCap && size > alternative {
				alternative = size
			}
		}
		if alternative > 0 {
			out = append(out, Advisory{
				Recommendation: fmt.Sprintf("Consider %.1f mm", alternative),
				Reason:         fmt.Sprintf("Recommended size exceeds WTW+1 soft cap (%.1f mm).", softCap),
			})
		}
	}

	// Borderline upsize rule: deep, wide eyes at 12.6 sometimes do
	// better one size up.
	if m.WTW > 12.1 && m.ACDInternal > 3.2 && p.LensSizeMm == 12.6 {
		out = append(out, Advisory{
			Recommendation: "Consider 13.2 mm",
			Reason: fmt.Sprintf(
				"ACD > 3.2 and WTW > 12.1 suggests a larger size in borderline cases (model prob %.1f%%).",
				p.LensProbability*100),
		})
	}

	return out
}
