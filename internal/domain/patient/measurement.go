package patient

import (
	"math"

	"iclvault/pkg/errors"
)

// MeasurementSet holds the nine raw pre-operative measurements for one
// eye. Units are fixed at the ingestion boundary: mm for distances, mm³
// for volume, diopters for powers and curvatures, years for age.
type MeasurementSet struct {
	Age             float64 `json:"Age"`
	WTW             float64 `json:"WTW"`             // white-to-white corneal diameter
	ACDInternal     float64 `json:"ACD_internal"`    // internal anterior chamber depth
	ICLPower        float64 `json:"ICL_Power"`       // intended implant power, signed
	ACShapeRatio    float64 `json:"AC_shape_ratio"`  // ACV / ACD
	SimKSteep       float64 `json:"SimK_steep"`      // steep simulated keratometry
	ACV             float64 `json:"ACV"`             // anterior chamber volume
	TCRPKm          float64 `json:"TCRP_Km"`         // total corneal refractive power mean
	TCRPAstigmatism float64 `json:"TCRP_Astigmatism"`
}

// Field names as they appear on the wire and in validation errors.
const (
	FieldAge             = "Age"
	FieldWTW             = "WTW"
	FieldACDInternal     = "ACD_internal"
	FieldICLPower        = "ICL_Power"
	FieldACShapeRatio    = "AC_shape_ratio"
	FieldSimKSteep       = "SimK_steep"
	FieldACV             = "ACV"
	FieldTCRPKm          = "TCRP_Km"
	FieldTCRPAstigmatism = "TCRP_Astigmatism"
)

// Validate checks the nine-field invariant: every field present and
// finite. All offending fields are reported in one error; nothing is
// defaulted.
func (m MeasurementSet) Validate() error {
	multi := &errors.MultiError{}

	check := func(field string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			multi.Add(errors.NewValidationError(field, "must be a finite number", v))
		}
	}

	check(FieldAge, m.Age)
	check(FieldWTW, m.WTW)
	check(FieldACDInternal, m.ACDInternal)
	check(FieldICLPower, m.ICLPower)
	check(FieldACShapeRatio, m.ACShapeRatio)
	check(FieldSimKSteep, m.SimKSteep)
	check(FieldACV, m.ACV)
	check(FieldTCRPKm, m.TCRPKm)
	check(FieldTCRPAstigmatism, m.TCRPAstigmatism)

	return multi.ToError()
}
