package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/metrics"
	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/projection"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
)

// persistence is the optional save block shared by calculator requests.
type persistence struct {
	ClientRef string `json:"client_ref"`
	Save      bool   `json:"save"`
}

type riskRequest struct {
	Answers model.RiskAnswers `json:"answers"`
	persistence
}

type riskResponse struct {
	Result       *scorer.RiskResult      `json:"result"`
	Summary      string                  `json:"summary"`
	Recommended  *catalog.Recommendation `json:"recommended,omitempty"`
	AssessmentID string                  `json:"assessment_id,omitempty"`
}

func (s *Server) scoreRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := s.schemas.decode(w, r, schemaRisk, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.canSave(req.persistence); err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	res, err := s.deps.Risk.Score(req.Answers)
	metrics.Observe(metrics.CalcRisk, start, err, preconditionErrors...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := riskResponse{Result: res, Summary: res.Summary()}
	if rec, err := s.deps.Catalog.RecommendedFunds(res.Profile.Level); err == nil {
		resp.Recommended = rec
	}
	if req.Save {
		resp.AssessmentID, err = s.save(r.Context(), func() (*model.Assessment, error) {
			return scorer.RiskAssessment(req.ClientRef, req.Answers, res)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type matchRequest struct {
	Answers model.AnswerSet `json:"answers"`
	Top     int             `json:"top"`
	persistence
}

type matchResponse struct {
	Results      []scorer.MatchResult `json:"results"`
	Summary      string               `json:"summary"`
	AssessmentID string               `json:"assessment_id,omitempty"`
}

func (s *Server) scoreMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := s.schemas.decode(w, r, schemaMatch, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.canSave(req.persistence); err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	results, err := s.deps.Match.Match(req.Answers)
	metrics.Observe(metrics.CalcMatch, start, err, preconditionErrors...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	top := req.Top
	if top == 0 {
		top = s.deps.Match.Config().TopN
	}
	resp := matchResponse{Results: scorer.Top(results, top), Summary: scorer.MatchSummary(results)}
	if req.Save {
		resp.AssessmentID, err = s.save(r.Context(), func() (*model.Assessment, error) {
			return s.deps.Match.MatchAssessment(req.ClientRef, req.Answers, results)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type projectionRequest struct {
	projection.Input
	persistence
}

type projectionResponse struct {
	*projection.Series
	Summary      string `json:"summary"`
	AssessmentID string `json:"assessment_id,omitempty"`
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := s.schemas.decode(w, r, schemaProjection, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.canSave(req.persistence); err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	series := projection.Project(req.Input)
	metrics.Observe(metrics.CalcProjection, start, nil)

	resp := projectionResponse{Series: series, Summary: series.Summary()}
	if req.Save {
		var err error
		resp.AssessmentID, err = s.save(r.Context(), func() (*model.Assessment, error) {
			return projection.Assessment(req.ClientRef, req.Input, series)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// dfmRequest leaves every input optional; omitted fields take the
// configured defaults.
type dfmRequest struct {
	Principal          *float64 `json:"principal"`
	AnnualContribution *float64 `json:"annual_contribution"`
	Years              *int     `json:"years"`
	CurrentApproach    *string  `json:"current_approach"`
	ClientCount        *int     `json:"client_count"`
	persistence
}

func (req dfmRequest) input(def projection.DFMInput) projection.DFMInput {
	in := def
	if req.Principal != nil {
		in.Principal = *req.Principal
	}
	if req.AnnualContribution != nil {
		in.AnnualContribution = *req.AnnualContribution
	}
	if req.Years != nil {
		in.Years = *req.Years
	}
	if req.CurrentApproach != nil {
		in.CurrentApproach = *req.CurrentApproach
	}
	if req.ClientCount != nil {
		in.ClientCount = *req.ClientCount
	}
	return in
}

type dfmResponse struct {
	*projection.DFMResult
	Input        projection.DFMInput `json:"input"`
	Summary      string              `json:"summary"`
	AssessmentID string              `json:"assessment_id,omitempty"`
}

func (s *Server) projectDFM(w http.ResponseWriter, r *http.Request) {
	var req dfmRequest
	if err := s.schemas.decode(w, r, schemaDFM, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.canSave(req.persistence); err != nil {
		writeError(w, r, err)
		return
	}

	in := req.input(projection.DefaultDFMInput(s.deps.Projection))
	start := time.Now()
	res, err := projection.ProjectDFM(in, s.deps.Projection)
	metrics.Observe(metrics.CalcDFM, start, err, projection.ErrUnknownApproach)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := dfmResponse{DFMResult: res, Input: in, Summary: res.Summary()}
	if req.Save {
		resp.AssessmentID, err = s.save(r.Context(), func() (*model.Assessment, error) {
			return projection.DFMAssessment(req.ClientRef, in, res)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) canSave(p persistence) error {
	if p.Save && s.deps.Store == nil {
		return errStorageDisabled
	}
	return nil
}

// save builds an assessment and stores it, returning its ID.
func (s *Server) save(ctx context.Context, build func() (*model.Assessment, error)) (string, error) {
	a, err := build()
	if err != nil {
		return "", err
	}
	if err := s.deps.Store.SaveAssessment(ctx, a); err != nil {
		return "", eris.Wrap(err, "httpapi: save assessment")
	}
	return a.ID, nil
}
