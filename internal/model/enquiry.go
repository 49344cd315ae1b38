package model

import "time"

// EnquiryType classifies a contact form submission.
type EnquiryType string

const (
	EnquiryPartnership EnquiryType = "partnership"
	EnquirySolutions   EnquiryType = "solutions"
	EnquirySupport     EnquiryType = "support"
	EnquiryMedia       EnquiryType = "media"
	EnquiryOther       EnquiryType = "other"
)

// Valid reports whether t is one of the enquiry types offered on the form.
func (t EnquiryType) Valid() bool {
	switch t {
	case EnquiryPartnership, EnquirySolutions, EnquirySupport, EnquiryMedia, EnquiryOther:
		return true
	}
	return false
}

// Enquiry is a contact form submission.
type Enquiry struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Company          string      `json:"company,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	EnquiryType      EnquiryType `json:"enquiry_type"`
	Message          string      `json:"message"`
	SalesforceLeadID string      `json:"salesforce_lead_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
