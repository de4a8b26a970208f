package features

// Manufactured ICL diameters in mm. The classifier's four classes map
// onto these values in ascending order.
var LensSizes = [4]float64{12.1, 12.6, 13.2, 13.7}

// NoSuggestion is the sentinel returned when the measured WTW falls
// outside the nomogram's published coverage. The table is never
// extrapolated.
const NoSuggestion = 0.0

// deepACDCutoff is the depth above which the nomogram shifts the
// suggestion up one tier at width-range boundaries.
const deepACDCutoff = 3.5

// nomogramRule maps a half-open WTW interval [lo, hi) to a suggested
// size, with an alternative suggestion for deep chambers.
type nomogramRule struct {
	lo, hi   float64
	size     float64
	deepSize float64
}

// nomogramTable is the manufacturer sizing guidance as an ordered
// interval table, evaluated top-down with the first match winning.
var nomogramTable = []nomogramRule{
	{10.5, 10.7, NoSuggestion, 12.1},
	{10.7, 11.1, 12.1, 12.1},
	{11.1, 11.2, 12.1, 12.6},
	{11.2, 11.5, 12.6, 12.6},
	{11.5, 11.7, 12.6, 13.2},
	{11.7, 12.2, 13.2, 13.2},
	{12.2, 12.3, 13.2, 13.7},
	{12.3, 13.0, 13.7, 13.7},
}

// NomogramSuggestion returns the published sizing-guideline suggestion
// for a (WTW, ACD) pair, or NoSuggestion when WTW is outside the
// table's coverage.
func NomogramSuggestion(wtw, acd float64) float64 {
	for _, rule := range nomogramTable {
		if wtw >= rule.lo && wtw < rule.hi {
			if acd > deepACDCutoff {
				return rule.deepSize
			}
			return rule.size
		}
	}
	return NoSuggestion
}
