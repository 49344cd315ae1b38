package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultCompany fills the required Lead.Company field for private individuals.
const DefaultCompany = "Individual"

// Lead is the subset of the Salesforce Lead object written for enquiries.
type Lead struct {
	ID          string `json:"Id,omitempty" salesforce:"Id"`
	FirstName   string `json:"FirstName,omitempty" salesforce:"FirstName"`
	LastName    string `json:"LastName" salesforce:"LastName"`
	Email       string `json:"Email" salesforce:"Email"`
	Company     string `json:"Company" salesforce:"Company"`
	Phone       string `json:"Phone,omitempty" salesforce:"Phone"`
	LeadSource  string `json:"LeadSource,omitempty" salesforce:"LeadSource"`
	Description string `json:"Description,omitempty" salesforce:"Description"`
}

// SplitName splits a full name into first and last name. Salesforce requires
// a last name, so a single word is used as the last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func (l Lead) fields() map[string]any {
	company := l.Company
	if strings.TrimSpace(company) == "" {
		company = DefaultCompany
	}
	m := map[string]any{
		"LastName": l.LastName,
		"Email":    l.Email,
		"Company":  company,
	}
	for k, v := range map[string]string{
		"FirstName":   l.FirstName,
		"Phone":       l.Phone,
		"LeadSource":  l.LeadSource,
		"Description": l.Description,
	} {
		if v != "" {
			m[k] = v
		}
	}
	return m
}

// CreateLead inserts a Lead and returns the new Salesforce ID.
func CreateLead(ctx context.Context, c Client, lead Lead) (string, error) {
	if strings.TrimSpace(lead.LastName) == "" {
		return "", eris.New("sf: lead LastName is required")
	}
	if lead.Email == "" {
		return "", eris.New("sf: lead Email is required")
	}
	id, err := c.InsertOne(ctx, "Lead", lead.fields())
	if err != nil {
		return "", eris.Wrapf(err, "sf: create lead %s", lead.Email)
	}
	return id, nil
}

// FindLeadByEmail returns the newest open lead with the given email, or nil
// when there is none.
func FindLeadByEmail(ctx context.Context, c Client, email string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT Id, LastName, Email, Company, Description FROM Lead WHERE Email = '%s' AND IsConverted = false ORDER BY CreatedDate DESC LIMIT 1",
		escapeSoql(email),
	)
	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrapf(err, "sf: find lead by email %s", email)
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// AppendLeadDescription adds note below the lead's existing description.
func AppendLeadDescription(ctx context.Context, c Client, lead Lead, note string) error {
	if lead.ID == "" {
		return eris.New("sf: lead id is required")
	}
	desc := note
	if prev := strings.TrimSpace(lead.Description); prev != "" {
		desc = prev + "\n\n" + note
	}
	if err := c.UpdateOne(ctx, "Lead", lead.ID, map[string]any{"Description": desc}); err != nil {
		return eris.Wrapf(err, "sf: update lead %s", lead.ID)
	}
	return nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}
