package predict

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"iclvault/internal/domain/patient"
	"iclvault/internal/features"
	"iclvault/internal/metrics"
	"iclvault/internal/registry"
	"iclvault/pkg/errors"
)

// CompareAll derives the feature vector once and scores every registered
// artifact against it. Per-artifact failures (errors, panics, timeouts)
// become error records in that artifact's slot and never taint other
// slots. Every registered artifact contributes exactly one outcome.
//
// Only a validation error aborts the whole call.
func (s *Service) CompareAll(ctx context.Context, m patient.MeasurementSet) ([]Outcome, error) {
	vec, err := features.Derive(m)
	if err != nil {
		metrics.ValidationFailures.Inc()
		return nil, err
	}

	artifacts := s.registry.All()
	tags := s.registry.Tags()

	outcomes := make([]Outcome, len(tags))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, tag := range tags {
		i, artifact := i, artifacts[tag]
		g.Go(func() error {
			start := time.Now()
			result, err := s.scoreWithDeadline(ctx, artifact, vec)
			metrics.RecordPrediction(artifact.Tag, "compare", time.Since(start), err)

			if err != nil {
				s.log.Warnf("Comparison slot %s failed: %v", artifact.Tag, err)
				outcomes[i] = Outcome{Tag: artifact.Tag, Err: err}
				return nil
			}
			outcomes[i] = Outcome{Tag: artifact.Tag, Result: result}
			return nil
		})
	}

	// Slot goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	return outcomes, nil
}

// scoreWithDeadline runs one artifact's scoring under the per-artifact
// timeout so a slow model cannot block the rest from reporting, and
// converts panics into scoring errors.
func (s *Service) scoreWithDeadline(ctx context.Context, a *registry.Artifact, vec *features.Vector) (*Prediction, error) {
	if s.artifactTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.artifactTimeout)
		defer cancel()
	}

	type scored struct {
		result *Prediction
		err    error
	}
	done := make(chan scored, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- scored{err: errors.Wrapf(errors.ErrScoringFailed, "panic: %v", r)}
			}
		}()
		result, err := scoreArtifact(a, vec)
		done <- scored{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, errors.Wrapf(errors.ErrTimeout, "artifact %s", a.Tag)
	}
}
