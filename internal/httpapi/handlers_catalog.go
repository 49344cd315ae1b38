package httpapi

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/model"
)

func (s *Server) listFunds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f catalog.FundFilter
	var err error
	if f.MinRisk, err = intParam(q.Get("min_risk"), 0); err != nil {
		writeError(w, r, badRequest("min_risk must be an integer"))
		return
	}
	if f.MaxRisk, err = intParam(q.Get("max_risk"), 0); err != nil {
		writeError(w, r, badRequest("max_risk must be an integer"))
		return
	}
	if v := q.Get("esg"); v != "" {
		if f.ESGOnly, err = strconv.ParseBool(v); err != nil {
			writeError(w, r, badRequest("esg must be true or false"))
			return
		}
	}
	writeJSON(w, http.StatusOK, s.deps.Catalog.FilterFunds(f))
}

func (s *Server) getFund(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Catalog.Fund(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) compareFunds(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeError(w, r, badRequest("ids is required"))
		return
	}
	funds, err := s.deps.Catalog.CompareFunds(ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, funds)
}

func (s *Server) recommendedFunds(w http.ResponseWriter, r *http.Request) {
	level, err := intParam(r.URL.Query().Get("risk"), 0)
	if err != nil || level == 0 {
		writeError(w, r, badRequest("risk must be an integer between 1 and 5"))
		return
	}
	rec, err := s.deps.Catalog.RecommendedFunds(level)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) riskQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.RiskQuestions())
}

func (s *Server) riskProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.RiskProfiles())
}

func (s *Server) matchQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.MatchQuestions())
}

func (s *Server) assumptions(w http.ResponseWriter, r *http.Request) {
	p := s.deps.Projection
	writeJSON(w, http.StatusOK, map[string]any{
		"diy":      p.DIY,
		"advisory": p.Advisory,
		"dfm":      p.DFM,
		"defaults": map[string]any{
			"principal":           p.DefaultPrincipal,
			"annual_contribution": p.DefaultContribution,
			"years":               p.DefaultYears,
			"current_approach":    p.DefaultApproach,
			"client_count":        p.DefaultClients,
		},
	})
}

// listInsights omits article bodies; fetch one by slug for the full text.
func (s *Server) listInsights(w http.ResponseWriter, r *http.Request) {
	insights := s.deps.Catalog.Insights()
	category := r.URL.Query().Get("category")
	out := make([]model.Insight, 0, len(insights))
	for _, in := range insights {
		if category != "" && !strings.EqualFold(in.Category, category) {
			continue
		}
		in.Body = ""
		out = append(out, in)
	}
	writeJSON(w, http.StatusOK, out)
}

type insightResponse struct {
	model.Insight
	HTML string `json:"html"`
}

func (s *Server) getInsight(w http.ResponseWriter, r *http.Request) {
	in, err := s.deps.Catalog.Insight(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(in.Body), &buf); err != nil {
		writeError(w, r, eris.Wrapf(err, "httpapi: render insight %q", in.Slug))
		return
	}
	writeJSON(w, http.StatusOK, insightResponse{Insight: in, HTML: buf.String()})
}

func (s *Server) listSolutions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.Solutions())
}

// intParam parses an optional integer query value.
func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
