package features

import (
	"iclvault/pkg/errors"
)

// Engineered feature names. These are the published column names shared
// with the training pipeline; artifact manifests declare subsets of them.
const (
	// Raw measurements carried through
	Age             = "Age"
	WTW             = "WTW"
	ACDInternal     = "ACD_internal"
	ICLPower        = "ICL_Power"
	ACShapeRatio    = "AC_shape_ratio"
	SimKSteep       = "SimK_steep"
	ACV             = "ACV"
	TCRPKm          = "TCRP_Km"
	TCRPAstigmatism = "TCRP_Astigmatism"

	// Ordinal buckets
	WTWBucket   = "WTW_Bucket"
	ACDBucket   = "ACD_Bucket"
	ShapeBucket = "Shape_Bucket"

	// Continuous ratios and interactions
	SpaceVolume         = "Space_Volume"
	AspectRatio         = "Aspect_Ratio"
	PowerDensity        = "Power_Density"
	ChamberTightness    = "Chamber_Tightness"
	CurvatureDepthRatio = "Curvature_Depth_Ratio"
	AgeSpaceRatio       = "Age_Space_Ratio"
	VolumePerDepth      = "Volume_Per_Depth"
	VolumeDensity       = "Volume_Density"
	RoomPerDiopter      = "Room_Per_Diopter"

	// Binary clinical flags
	HighPowerDeepACD = "High_Power_Deep_ACD"
	StabilityRisk    = "Stability_Risk"
	TightChamberFlag = "Tight_Chamber_Flag"
	WideFlatChamber  = "Wide_Flat_Chamber"

	// Nomogram suggestion and comparison features
	NomogramSize             = "Nomogram_Size"
	VolumeConstraint         = "Volume_Constraint"
	SteepEyeAdjustment       = "Steep_Eye_Adjustment"
	SafetyDownsizeFlag       = "Safety_Downsize_Flag"
	NomogramDownsizePressure = "Nomogram_Downsize_Pressure"
	TightChamberScore        = "Tight_Chamber_Score"
)

// Vector is an ordered, named feature mapping produced by Derive. It is
// append-only during construction; names are never removed or renamed so
// older artifacts keep resolving their declared subsets.
type Vector struct {
	names  []string
	values map[string]float64
}

func newVector(capacity int) *Vector {
	return &Vector{
		names:  make([]string, 0, capacity),
		values: make(map[string]float64, capacity),
	}
}

func (v *Vector) put(name string, value float64) {
	if _, exists := v.values[name]; !exists {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Get returns the value for a feature name.
func (v *Vector) Get(name string) (float64, bool) {
	val, ok := v.values[name]
	return val, ok
}

// Names returns the feature names in insertion order.
func (v *Vector) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Len returns the number of features in the vector.
func (v *Vector) Len() int {
	return len(v.names)
}

// Select extracts the named subset in the given order. Names present in
// the vector but absent from the list are always ignored; a requested
// name missing from the vector is an error. This is the single
// select-and-validate step shared by the routed and comparison paths.
func (v *Vector) Select(names []string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		val, ok := v.values[name]
		if !ok {
			return nil, errors.Wrapf(errors.ErrFeatureMissing, "feature %q", name)
		}
		out[i] = val
	}
	return out, nil
}
