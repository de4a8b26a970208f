package predict

import (
	"iclvault/internal/features"
)

// Router chooses the production artifact for a feature vector. Exactly
// two artifacts participate in routing; every other registered artifact
// is reachable only through comparison mode. The two tags are
// configuration, not constants.
type Router struct {
	FoundationTag string
	SpecialistTag string
}

// Route is pure and total: a strictly positive anatomical tightness
// score selects the tight-chamber specialist; zero (the score is
// clipped at zero and cannot go negative) selects the foundation model.
func (r Router) Route(vec *features.Vector) string {
	score, ok := vec.Get(features.TightChamberScore)
	if ok && score > 0 {
		return r.SpecialistTag
	}
	return r.FoundationTag
}
