package scorer

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// Precondition errors. A scorer never substitutes defaults for bad input.
var (
	ErrIncompleteAnswers = eris.New("scorer: incomplete answers")
	ErrUnknownQuestion   = eris.New("scorer: unknown question")
	ErrInvalidScore      = eris.New("scorer: invalid score")
	ErrAnswerMode        = eris.New("scorer: answer does not match question mode")
	ErrUnknownOption     = eris.New("scorer: unknown option")
)

// RiskResult is the outcome of scoring a complete risk questionnaire.
type RiskResult struct {
	CapacityScore   float64           `json:"capacity_score"`
	ToleranceScore  float64           `json:"tolerance_score"`
	GoalsScore      float64           `json:"goals_score"`
	EffectiveScore  float64           `json:"effective_score"`
	TotalScore      int               `json:"total_score"`
	NormalizedScore float64           `json:"normalized_score"`
	ProfileIndex    int               `json:"profile_index"`
	Profile         model.RiskProfile `json:"profile"`
}

// RiskScorer maps risk questionnaire answers to one of five risk profiles.
// It holds only immutable data and is safe for concurrent use.
type RiskScorer struct {
	questions []model.RiskQuestion
	profiles  []model.RiskProfile
}

// NewRiskScorer creates a RiskScorer over the given questionnaire and profiles.
// Profiles must be ordered by level, lowest first.
func NewRiskScorer(questions []model.RiskQuestion, profiles []model.RiskProfile) *RiskScorer {
	return &RiskScorer{
		questions: slices.Clone(questions),
		profiles:  slices.Clone(profiles),
	}
}

// Questions returns the questionnaire the scorer was built with.
func (s *RiskScorer) Questions() []model.RiskQuestion {
	return slices.Clone(s.questions)
}

// Score computes category means and selects a profile. Every question must be
// answered with a score offered by one of its options.
func (s *RiskScorer) Score(answers model.RiskAnswers) (*RiskResult, error) {
	if err := s.validate(answers); err != nil {
		return nil, err
	}
	return computeRisk(s.questions, s.profiles, answers), nil
}

func (s *RiskScorer) validate(answers model.RiskAnswers) error {
	known := make(map[int]model.RiskQuestion, len(s.questions))
	var missing []int
	for _, q := range s.questions {
		known[q.ID] = q
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}

	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		q, ok := known[id]
		if !ok {
			return eris.Wrapf(ErrUnknownQuestion, "scorer: question %d", id)
		}
		if !q.OffersScore(answers[id]) {
			return eris.Wrapf(ErrInvalidScore, "scorer: question %d has no option scoring %d", id, answers[id])
		}
	}

	if len(missing) > 0 {
		return eris.Wrapf(ErrIncompleteAnswers, "scorer: %d of %d questions unanswered %v",
			len(missing), len(s.questions), missing)
	}
	return nil
}

// computeRisk is the pure scoring step over a validated answer set.
func computeRisk(questions []model.RiskQuestion, profiles []model.RiskProfile, answers model.RiskAnswers) *RiskResult {
	sums := map[model.RiskCategory]int{}
	counts := map[model.RiskCategory]int{}
	total := 0
	for _, q := range questions {
		score := answers[q.ID]
		sums[q.Category] += score
		counts[q.Category]++
		total += score
	}

	mean := func(c model.RiskCategory) float64 {
		if counts[c] == 0 {
			return 0
		}
		return float64(sums[c]) / float64(counts[c])
	}

	capacity := mean(model.RiskCapacity)
	tolerance := mean(model.RiskTolerance)
	effective := math.Min(capacity, tolerance)

	res := &RiskResult{
		CapacityScore:  capacity,
		ToleranceScore: tolerance,
		GoalsScore:     mean(model.RiskGoals),
		EffectiveScore: effective,
		TotalScore:     total,
		ProfileIndex:   profileIndex(effective, len(profiles)),
	}
	if n := len(questions); n > 0 {
		res.NormalizedScore = float64(total) / float64(n*5) * 5
	}
	if res.ProfileIndex < len(profiles) {
		res.Profile = profiles[res.ProfileIndex]
	}
	return res
}

// profileIndex rounds the effective score half up and clamps it to the
// available profiles.
func profileIndex(effective float64, n int) int {
	idx := int(math.Floor(effective+0.5)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// Summary returns a one-line description of the result.
func (r *RiskResult) Summary() string {
	return fmt.Sprintf("%s (level %d, effective %.2f)", r.Profile.Name, r.Profile.Level, r.EffectiveScore)
}
