// Package features turns a validated measurement set into the engineered
// feature superset consumed by the model artifacts. Derivation is pure
// and deterministic: the same measurements always yield the same vector,
// and nothing is cached between requests.
package features

import (
	"math"

	"iclvault/internal/domain/patient"
	"iclvault/pkg/errors"
)

// Bucket cutoffs. A value exactly at a cutoff falls in the lower bucket.
var (
	wtwCutoffs   = []float64{11.6, 11.9, 12.4}
	acdCutoffs   = []float64{3.1, 3.3}
	shapeCutoffs = []float64{58, 62.5, 68}
)

// Tight-chamber medians and spreads from the 12.1 outcome population.
const (
	tightACDMedian = 3.07
	tightACDSpread = 0.30
	tightACVMedian = 174.7
	tightACVSpread = 30.0
	tightWTWMedian = 11.6
	tightWTWSpread = 0.35
)

// Derive computes the full engineered feature vector from one
// measurement set. It is total over valid inputs and fails with a
// validation error otherwise; it never partially computes.
func Derive(m patient.MeasurementSet) (*Vector, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := checkDenominators(m); err != nil {
		return nil, err
	}

	v := newVector(31)

	// Raw measurements first, in training-pipeline order.
	v.put(Age, m.Age)
	v.put(WTW, m.WTW)
	v.put(ACDInternal, m.ACDInternal)
	v.put(ICLPower, m.ICLPower)
	v.put(ACShapeRatio, m.ACShapeRatio)
	v.put(SimKSteep, m.SimKSteep)
	v.put(ACV, m.ACV)
	v.put(TCRPKm, m.TCRPKm)
	v.put(TCRPAstigmatism, m.TCRPAstigmatism)

	// Ordinal buckets
	v.put(WTWBucket, float64(bucket(m.WTW, wtwCutoffs)))
	v.put(ACDBucket, float64(bucket(m.ACDInternal, acdCutoffs)))
	v.put(ShapeBucket, float64(bucket(m.ACShapeRatio, shapeCutoffs)))

	// Ratios and interactions
	absPower := math.Abs(m.ICLPower)
	v.put(SpaceVolume, m.WTW*m.ACDInternal)
	v.put(AspectRatio, m.WTW/m.ACDInternal)
	v.put(PowerDensity, absPower/m.ACV)
	v.put(ChamberTightness, m.ACV/m.WTW)
	v.put(CurvatureDepthRatio, m.SimKSteep/m.ACDInternal)
	v.put(AgeSpaceRatio, m.Age/m.ACDInternal)
	v.put(VolumePerDepth, m.ACV/(m.ACDInternal*m.ACDInternal))
	v.put(VolumeDensity, m.ACV/(m.WTW*m.WTW))
	v.put(RoomPerDiopter, m.ACV/(absPower+1))

	// Clinical flags
	v.put(HighPowerDeepACD, bool01(absPower > 14 && m.ACDInternal > 3.3))
	v.put(StabilityRisk, bool01(m.TCRPAstigmatism > 1.5 && m.WTW > 12.0))
	v.put(TightChamberFlag, bool01(m.ACV < 170 && m.WTW < 11.6))
	v.put(WideFlatChamber, bool01(m.WTW > 12.0 && m.ACDInternal < 3.1))

	// Nomogram suggestion and conservative deviations
	nomogram := NomogramSuggestion(m.WTW, m.ACDInternal)
	v.put(NomogramSize, nomogram)
	v.put(VolumeConstraint, bool01(nomogram > 12.1 && m.ACV < 170))
	v.put(SteepEyeAdjustment, bool01(nomogram > 12.1 && m.SimKSteep > 46.0))
	v.put(SafetyDownsizeFlag, bool01(nomogram == 13.2 && absPower < 10.0))

	// Tension between nomogram suggestion and chamber capacity
	gap := nomogram - LensSizes[0]
	adequacy := math.Max(0.5, (m.ACV/170.0)*(m.ACDInternal/3.1))
	v.put(NomogramDownsizePressure, gap/adequacy)

	v.put(TightChamberScore, tightnessScore(m))

	return v, nil
}

// tightnessScore averages three clipped-at-zero z-scores of depth,
// volume and width against the tight-outcome medians. Zero for normal
// and large chambers.
func tightnessScore(m patient.MeasurementSet) float64 {
	acdZ := math.Max(0, (tightACDMedian-m.ACDInternal)/tightACDSpread)
	acvZ := math.Max(0, (tightACVMedian-m.ACV)/tightACVSpread)
	wtwZ := math.Max(0, (tightWTWMedian-m.WTW)/tightWTWSpread)
	return (acdZ + acvZ + wtwZ) / 3.0
}

// checkDenominators rejects inputs that would divide by zero in a
// derived ratio rather than silently producing infinity.
func checkDenominators(m patient.MeasurementSet) error {
	multi := &errors.MultiError{}
	if m.ACDInternal == 0 {
		multi.Add(errors.NewValidationError(patient.FieldACDInternal, "must be non-zero (ratio denominator)", m.ACDInternal))
	}
	if m.WTW == 0 {
		multi.Add(errors.NewValidationError(patient.FieldWTW, "must be non-zero (ratio denominator)", m.WTW))
	}
	if m.ACV == 0 {
		multi.Add(errors.NewValidationError(patient.FieldACV, "must be non-zero (ratio denominator)", m.ACV))
	}
	return multi.ToError()
}

// bucket returns the ordinal code for x against ascending cutoffs. A
// value exactly at a cutoff belongs to the lower bucket.
func bucket(x float64, cutoffs []float64) int {
	for i, c := range cutoffs {
		if x <= c {
			return i
		}
	}
	return len(cutoffs)
}

func bool01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
