package api

import (
	"iclvault/internal/domain/patient"
	"iclvault/internal/predict"
	"iclvault/pkg/errors"
)

// PredictRequest is the wire form of one eye's measurements. Fields are
// pointers so an absent field is distinguishable from a literal zero;
// every field is required.
type PredictRequest struct {
	Age             *float64 `json:"Age"`
	WTW             *float64 `json:"WTW"`
	ACDInternal     *float64 `json:"ACD_internal"`
	ICLPower        *float64 `json:"ICL_Power"`
	ACShapeRatio    *float64 `json:"AC_shape_ratio"`
	SimKSteep       *float64 `json:"SimK_steep"`
	ACV             *float64 `json:"ACV"`
	TCRPKm          *float64 `json:"TCRP_Km"`
	TCRPAstigmatism *float64 `json:"TCRP_Astigmatism"`
}

// toMeasurement validates presence of every field and converts to the
// domain type. All missing fields are reported at once.
func (r *PredictRequest) toMeasurement() (patient.MeasurementSet, error) {
	multi := &errors.MultiError{}

	require := func(name string, v *float64) float64 {
		if v == nil {
			multi.Add(errors.NewValidationError(name, "field is required", nil))
			return 0
		}
		return *v
	}

	m := patient.MeasurementSet{
		Age:             require(patient.FieldAge, r.Age),
		WTW:             require(patient.FieldWTW, r.WTW),
		ACDInternal:     require(patient.FieldACDInternal, r.ACDInternal),
		ICLPower:        require(patient.FieldICLPower, r.ICLPower),
		ACShapeRatio:    require(patient.FieldACShapeRatio, r.ACShapeRatio),
		SimKSteep:       require(patient.FieldSimKSteep, r.SimKSteep),
		ACV:             require(patient.FieldACV, r.ACV),
		TCRPKm:          require(patient.FieldTCRPKm, r.TCRPKm),
		TCRPAstigmatism: require(patient.FieldTCRPAstigmatism, r.TCRPAstigmatism),
	}

	if err := multi.ToError(); err != nil {
		return patient.MeasurementSet{}, err
	}
	return m, nil
}

// CompareSlot is one artifact's entry in a comparison response. Exactly
// one of Result or ErrorMessage is populated.
type CompareSlot struct {
	ArtifactTag  string              `json:"artifact_tag"`
	Result       *predict.Prediction `json:"result,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// CompareResponse is the full comparison payload: one slot per
// registered artifact.
type CompareResponse struct {
	Outcomes []CompareSlot `json:"outcomes"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
