package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// AssessmentKind identifies which calculator produced an assessment.
type AssessmentKind string

const (
	KindRiskProfile AssessmentKind = "risk_profile"
	KindFundMatch   AssessmentKind = "fund_match"
	KindProjection  AssessmentKind = "projection"
)

// Valid reports whether k is a known kind.
func (k AssessmentKind) Valid() bool {
	switch k {
	case KindRiskProfile, KindFundMatch, KindProjection:
		return true
	}
	return false
}

// Assessment is a stored calculator result.
type Assessment struct {
	ID        string          `json:"id"`
	Kind      AssessmentKind  `json:"kind"`
	ClientRef string          `json:"client_ref,omitempty"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	Summary   string          `json:"summary"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewAssessment encodes a calculator input and result into a new Assessment
// with a fresh ID.
func NewAssessment(kind AssessmentKind, clientRef string, input, result any, summary string) (*Assessment, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrapf(err, "model: marshal %s input", kind)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrapf(err, "model: marshal %s result", kind)
	}
	return &Assessment{
		ID:        uuid.NewString(),
		Kind:      kind,
		ClientRef: clientRef,
		Input:     in,
		Result:    out,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}, nil
}
