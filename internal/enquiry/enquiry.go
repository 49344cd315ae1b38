// Package enquiry accepts contact form submissions, stores them and forwards
// them to Salesforce as leads.
package enquiry

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/resilience"
	"github.com/sequoia-invest/adviser-tools/pkg/salesforce"
)

// MaxMessageLength bounds the free-text message.
const MaxMessageLength = 5000

// ErrInvalid is returned when a submission fails validation.
var ErrInvalid = eris.New("enquiry: invalid submission")

// Recorder is the part of store.Store the service writes to.
type Recorder interface {
	CreateEnquiry(ctx context.Context, e *model.Enquiry) error
	SetEnquiryLead(ctx context.Context, enquiryID, leadID string) error
}

// Service validates, stores and forwards enquiries.
type Service struct {
	store      Recorder
	sf         salesforce.Client
	leadSource string
	breaker    *resilience.Breaker
	backoff    resilience.Backoff
}

// Option configures a Service.
type Option func(*Service)

// WithSalesforce forwards stored enquiries to Salesforce as leads.
func WithSalesforce(c salesforce.Client, leadSource string) Option {
	return func(s *Service) {
		s.sf = c
		s.leadSource = leadSource
	}
}

// WithBackoff overrides the retry policy for Salesforce calls.
func WithBackoff(b resilience.Backoff) Option {
	return func(s *Service) { s.backoff = b }
}

// WithBreaker overrides the circuit breaker guarding Salesforce calls.
func WithBreaker(b *resilience.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

// NewService returns a Service that persists to st.
func NewService(st Recorder, opts ...Option) *Service {
	s := &Service{
		store:   st,
		breaker: resilience.NewBreaker(5, 0),
		backoff: resilience.DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize trims whitespace and lowercases the email.
func Normalize(e model.Enquiry) model.Enquiry {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	e.Company = strings.TrimSpace(e.Company)
	e.Phone = strings.TrimSpace(e.Phone)
	e.Message = strings.TrimSpace(e.Message)
	return e
}

// Validate reports every problem with a normalized enquiry.
func Validate(e model.Enquiry) error {
	var errs []string
	if e.Name == "" {
		errs = append(errs, "name is required")
	}
	if !strings.Contains(e.Email, "@") {
		errs = append(errs, "email must contain @")
	}
	if e.Message == "" {
		errs = append(errs, "message is required")
	}
	if len(e.Message) > MaxMessageLength {
		errs = append(errs, fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}
	if !e.EnquiryType.Valid() {
		errs = append(errs, fmt.Sprintf("unknown enquiry_type %q", e.EnquiryType))
	}
	if len(errs) > 0 {
		return eris.Wrap(ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Submit validates and stores an enquiry, then creates or updates a
// Salesforce lead when a client is configured. Salesforce failures are logged
// and do not fail the submission.
func (s *Service) Submit(ctx context.Context, in model.Enquiry) (*model.Enquiry, error) {
	e := Normalize(in)
	e.ID = ""
	e.SalesforceLeadID = ""
	if err := Validate(e); err != nil {
		return nil, err
	}

	if err := s.store.CreateEnquiry(ctx, &e); err != nil {
		return nil, eris.Wrap(err, "enquiry: store")
	}
	zap.L().Info("enquiry: stored",
		zap.String("enquiry_id", e.ID),
		zap.String("type", string(e.EnquiryType)),
	)

	if s.sf == nil {
		return &e, nil
	}

	leadID, err := s.pushLead(ctx, e)
	if err != nil {
		zap.L().Warn("enquiry: salesforce lead failed",
			zap.String("enquiry_id", e.ID),
			zap.Error(err),
		)
		return &e, nil
	}
	if err := s.store.SetEnquiryLead(ctx, e.ID, leadID); err != nil {
		zap.L().Warn("enquiry: record lead id failed",
			zap.String("enquiry_id", e.ID),
			zap.String("lead_id", leadID),
			zap.Error(err),
		)
		return &e, nil
	}
	e.SalesforceLeadID = leadID
	return &e, nil
}

func (s *Service) pushLead(ctx context.Context, e model.Enquiry) (string, error) {
	if err := s.breaker.Allow(); err != nil {
		return "", err
	}
	id, err := resilience.RetryValue(ctx, s.backoff, "salesforce lead", func(ctx context.Context) (string, error) {
		return s.upsertLead(ctx, e)
	})
	s.breaker.Record(err)
	return id, err
}

// upsertLead reuses an open lead with the same email rather than creating a
// duplicate, appending the new message to its description.
func (s *Service) upsertLead(ctx context.Context, e model.Enquiry) (string, error) {
	lead := LeadFor(e, s.leadSource)

	existing, err := salesforce.FindLeadByEmail(ctx, s.sf, e.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := salesforce.AppendLeadDescription(ctx, s.sf, *existing, lead.Description); err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	return salesforce.CreateLead(ctx, s.sf, lead)
}

// LeadFor maps an enquiry onto a Salesforce lead.
func LeadFor(e model.Enquiry, leadSource string) salesforce.Lead {
	first, last := salesforce.SplitName(e.Name)
	return salesforce.Lead{
		FirstName:   first,
		LastName:    last,
		Email:       e.Email,
		Company:     e.Company,
		Phone:       e.Phone,
		LeadSource:  leadSource,
		Description: fmt.Sprintf("[%s] %s", e.EnquiryType, e.Message),
	}
}
