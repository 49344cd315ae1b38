package scorer

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// RiskAssessment packages a risk result for storage.
func RiskAssessment(clientRef string, answers model.RiskAnswers, res *RiskResult) (*model.Assessment, error) {
	return model.NewAssessment(model.KindRiskProfile, clientRef, answers, res, res.Summary())
}

// matchInput is the stored input of a fund-match assessment. The config hash
// ties the ranking to the weights that produced it.
type matchInput struct {
	Answers    model.AnswerSet `json:"answers"`
	ConfigHash string          `json:"config_hash"`
}

// MatchAssessment packages a ranked match list for storage.
func (s *MatchScorer) MatchAssessment(clientRef string, answers model.AnswerSet, results []MatchResult) (*model.Assessment, error) {
	in := matchInput{Answers: answers, ConfigHash: ConfigHash(s.cfg)}
	return model.NewAssessment(model.KindFundMatch, clientRef, in, results, MatchSummary(results))
}

// ConfigHash returns a SHA-256 hash of the scoring config for reproducibility.
func ConfigHash(cfg interface{}) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16]) // 32 hex chars
}
