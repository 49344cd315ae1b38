package projection

import "github.com/sequoia-invest/adviser-tools/internal/model"

// Assessment packages a two-scenario projection for storage.
func Assessment(clientRef string, in Input, s *Series) (*model.Assessment, error) {
	return model.NewAssessment(model.KindProjection, clientRef, in, s, s.Summary())
}

// DFMAssessment packages a DFM comparison for storage.
func DFMAssessment(clientRef string, in DFMInput, r *DFMResult) (*model.Assessment, error) {
	return model.NewAssessment(model.KindProjection, clientRef, in, r, r.Summary())
}
