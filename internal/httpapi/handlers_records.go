package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/store"
)

const (
	// defaultStatsHours is the stats window when none is given.
	defaultStatsHours = 24

	maxListLimit = 500
)

// health reports ok, or 503 when the configured store cannot be reached.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(r.Context()); err != nil {
			zap.L().Warn("httpapi: store ping failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) submitEnquiry(w http.ResponseWriter, r *http.Request) {
	if s.deps.Enquiries == nil {
		writeError(w, r, errStorageDisabled)
		return
	}
	var in model.Enquiry
	if err := s.schemas.decode(w, r, schemaEnquiry, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.deps.Enquiries.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, r, errStorageDisabled)
		return
	}
	a, err := s.deps.Store.GetAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// listAssessments pages through stored assessments, newest first.
func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, r, errStorageDisabled)
		return
	}
	q := r.URL.Query()
	f := store.AssessmentFilter{Kind: model.AssessmentKind(q.Get("kind"))}
	if f.Kind != "" && !f.Kind.Valid() {
		writeError(w, r, badRequest("kind must be risk_profile, fund_match or projection"))
		return
	}
	var err error
	if f.Limit, err = intParam(q.Get("limit"), 50); err != nil || f.Limit < 1 || f.Limit > maxListLimit {
		writeError(w, r, badRequest("limit must be an integer between 1 and 500"))
		return
	}
	if f.Offset, err = intParam(q.Get("offset"), 0); err != nil || f.Offset < 0 {
		writeError(w, r, badRequest("offset must be a non-negative integer"))
		return
	}
	hours, err := intParam(q.Get("hours"), 0)
	if err != nil || hours < 0 {
		writeError(w, r, badRequest("hours must be a non-negative integer"))
		return
	}
	if hours > 0 {
		f.Since = time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	}

	items, err := s.deps.Store.ListAssessments(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Assessment{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stats == nil {
		writeError(w, r, errStorageDisabled)
		return
	}
	hours, err := intParam(r.URL.Query().Get("hours"), defaultStatsHours)
	if err != nil {
		writeError(w, r, badRequest("hours must be an integer"))
		return
	}
	snap, err := s.deps.Stats.Collect(r.Context(), hours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
