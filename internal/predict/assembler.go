package predict

import (
	"math"
	"sort"

	"iclvault/internal/features"
	"iclvault/pkg/errors"
)

// probMassTolerance bounds the accepted deviation of a probability
// distribution from 1. A larger drift is a model-export defect and is
// surfaced, not renormalized away.
const probMassTolerance = 1e-3

// Acceptable post-operative vault clearance window in µm.
const (
	vaultLowUm  = 250.0
	vaultHighUm = 800.0
)

// optionFloor drops negligible sizes from the options list; the full
// distribution is always reported regardless.
const optionFloor = 0.01

// Assemble turns one artifact's raw outputs into a calibrated, bounded
// result. vaultMargin is the artifact's configured half-range in µm.
func Assemble(classProbs []float64, rawVault float64, vaultMargin float64) (*Prediction, error) {
	if len(classProbs) != len(features.LensSizes) {
		return nil, errors.Newf("expected %d class probabilities, got %d", len(features.LensSizes), len(classProbs))
	}

	sum := 0.0
	for _, p := range classProbs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, errors.Wrapf(errors.ErrProbabilityMass, "probability out of range: %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probMassTolerance {
		return nil, errors.Wrapf(errors.ErrProbabilityMass, "sum %.6f", sum)
	}

	// Arg-max; ties resolve to the smaller size.
	best := 0
	for i, p := range classProbs {
		if p > classProbs[best] {
			best = i
		}
	}

	distribution := make(map[string]float64, len(classProbs))
	options := make([]SizeOption, 0, len(classProbs))
	for i, p := range classProbs {
		size := features.LensSizes[i]
		distribution[sizeKey(size)] = p
		if p > optionFloor {
			options = append(options, SizeOption{SizeMm: size, Probability: p})
		}
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Probability > options[j].Probability
	})

	flag := RiskOK
	switch {
	case rawVault < vaultLowUm:
		flag = RiskLow
	case rawVault > vaultHighUm:
		flag = RiskHigh
	}

	return &Prediction{
		LensSizeMm:        features.LensSizes[best],
		LensProbability:   classProbs[best],
		SizeProbabilities: distribution,
		Options:           options,
		VaultPredUm:       rawVault,
		VaultRangeUm:      [2]float64{rawVault - vaultMargin, rawVault + vaultMargin},
		VaultFlag:         flag,
	}, nil
}
