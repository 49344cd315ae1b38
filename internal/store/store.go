// Package store persists calculator assessments and contact enquiries.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// ErrNotFound is returned when a record lookup or update matches nothing.
var ErrNotFound = eris.New("store: not found")

// defaultListLimit caps list queries that do not set a limit.
const defaultListLimit = 100

// AssessmentFilter specifies criteria for listing assessments.
type AssessmentFilter struct {
	Kind   model.AssessmentKind `json:"kind,omitempty"`
	Since  time.Time            `json:"since,omitempty"`
	Limit  int                  `json:"limit,omitempty"`
	Offset int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for the adviser tools.
type Store interface {
	// Assessments
	SaveAssessment(ctx context.Context, a *model.Assessment) error
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error)
	CountAssessments(ctx context.Context, since time.Time) (map[model.AssessmentKind]int, error)

	// Enquiries
	CreateEnquiry(ctx context.Context, e *model.Enquiry) error
	SetEnquiryLead(ctx context.Context, enquiryID, leadID string) error
	ListEnquiries(ctx context.Context, limit int) ([]model.Enquiry, error)
	CountEnquiries(ctx context.Context, since time.Time) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

func checkAssessment(a *model.Assessment) error {
	if a == nil {
		return eris.New("store: nil assessment")
	}
	if a.ID == "" {
		return eris.New("store: assessment id is required")
	}
	if !a.Kind.Valid() {
		return eris.Errorf("store: unknown assessment kind %q", a.Kind)
	}
	return nil
}

func notFound(entity, id string) error {
	return eris.Wrapf(ErrNotFound, "store: %s %s", entity, id)
}
