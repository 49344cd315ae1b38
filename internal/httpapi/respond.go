package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/enquiry"
	"github.com/sequoia-invest/adviser-tools/internal/monitoring"
	"github.com/sequoia-invest/adviser-tools/internal/projection"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
	"github.com/sequoia-invest/adviser-tools/internal/store"
)

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// errStorageDisabled is returned when a request needs a store the server was
// started without.
var errStorageDisabled = errors.New("httpapi: storage not configured")

// preconditionErrors are input the calculators refuse to score.
var preconditionErrors = []error{
	scorer.ErrIncompleteAnswers,
	scorer.ErrUnknownQuestion,
	scorer.ErrInvalidScore,
	scorer.ErrAnswerMode,
	scorer.ErrUnknownOption,
	projection.ErrUnknownApproach,
}

func statusFor(err error) int {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case isAny(err, preconditionErrors):
		return http.StatusUnprocessableEntity
	case isAny(err, []error{catalog.ErrFundNotFound, catalog.ErrInsightNotFound, store.ErrNotFound}):
		return http.StatusNotFound
	case isAny(err, []error{catalog.ErrTooManyFunds, catalog.ErrRiskLevel, monitoring.ErrLookback, enquiry.ErrInvalid}):
		return http.StatusBadRequest
	case errors.Is(err, errStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("httpapi: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var verr *validationError
	if errors.As(err, &verr) {
		body.Error = "request failed validation"
		body.Details = verr.details
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("httpapi: request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func badRequest(msg string) error {
	return &validationError{details: []string{msg}}
}
