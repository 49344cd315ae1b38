package scorer

import (
	"fmt"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/config"
	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// MatchResult is a portfolio with its match score.
type MatchResult struct {
	Portfolio  model.Portfolio `json:"portfolio"`
	Score      float64         `json:"score"`
	Percentage int             `json:"percentage"`
}

// MatchScorer ranks portfolios against fund-match questionnaire answers.
// It holds only immutable data and is safe for concurrent use.
type MatchScorer struct {
	questions  []model.MatchQuestion
	portfolios []model.Portfolio
	cfg        config.MatchConfig
}

// NewMatchScorer creates a MatchScorer. The config should already have passed
// ValidateMatchConfig.
func NewMatchScorer(questions []model.MatchQuestion, portfolios []model.Portfolio, cfg config.MatchConfig) *MatchScorer {
	return &MatchScorer{
		questions:  slices.Clone(questions),
		portfolios: slices.Clone(portfolios),
		cfg:        cfg,
	}
}

// Config returns the weights the scorer was built with.
func (s *MatchScorer) Config() config.MatchConfig {
	return s.cfg
}

// Questions returns the questionnaire the scorer was built with.
func (s *MatchScorer) Questions() []model.MatchQuestion {
	return slices.Clone(s.questions)
}

// Aggregate sums the score vectors of every selected option.
func (s *MatchScorer) Aggregate(answers model.AnswerSet) (model.ScoreVector, error) {
	var total model.ScoreVector

	known := make(map[string]bool, len(s.questions))
	var missing []string
	for _, q := range s.questions {
		known[q.ID] = true
		a, ok := answers[q.ID]
		if !ok || a == nil {
			missing = append(missing, q.ID)
			continue
		}
		v, err := scoreAnswer(q, a)
		if err != nil {
			return model.ScoreVector{}, err
		}
		total = total.Add(v)
	}
	for _, id := range answers.QuestionIDs() {
		if !known[id] {
			return model.ScoreVector{}, eris.Wrapf(ErrUnknownQuestion, "scorer: question %q", id)
		}
	}
	if len(missing) > 0 {
		return model.ScoreVector{}, eris.Wrapf(ErrIncompleteAnswers, "scorer: unanswered %v", missing)
	}
	return total, nil
}

// scoreAnswer checks an answer against its question and returns its vector.
// Repeated values in a multiple answer count once.
func scoreAnswer(q model.MatchQuestion, a model.Answer) (model.ScoreVector, error) {
	switch v := a.(type) {
	case model.SingleAnswer:
		if q.Mode != model.ModeSingle {
			return model.ScoreVector{}, eris.Wrapf(ErrAnswerMode, "scorer: question %q takes multiple values", q.ID)
		}
	case model.MultipleAnswer:
		if q.Mode != model.ModeMultiple {
			return model.ScoreVector{}, eris.Wrapf(ErrAnswerMode, "scorer: question %q takes a single value", q.ID)
		}
		if len(v) == 0 {
			return model.ScoreVector{}, eris.Wrapf(ErrIncompleteAnswers, "scorer: question %q has no selection", q.ID)
		}
	default:
		return model.ScoreVector{}, eris.Wrapf(ErrAnswerMode, "scorer: question %q: unsupported answer %T", q.ID, a)
	}

	var total model.ScoreVector
	seen := make(map[string]bool)
	for _, val := range a.Values() {
		if seen[val] {
			continue
		}
		seen[val] = true
		opt, ok := q.Option(val)
		if !ok {
			return model.ScoreVector{}, eris.Wrapf(ErrUnknownOption, "scorer: question %q has no option %q", q.ID, val)
		}
		total = total.Add(opt.Score)
	}
	return total, nil
}

// Match returns every portfolio ranked by score, highest first. Ties keep
// catalog order.
func (s *MatchScorer) Match(answers model.AnswerSet) ([]MatchResult, error) {
	agg, err := s.Aggregate(answers)
	if err != nil {
		return nil, err
	}
	return rank(s.portfolios, agg, s.cfg), nil
}

// rank scores and sorts portfolios for an aggregate vector.
func rank(portfolios []model.Portfolio, agg model.ScoreVector, cfg config.MatchConfig) []MatchResult {
	results := make([]MatchResult, 0, len(portfolios))
	for _, p := range portfolios {
		score := matchScore(p, agg, cfg)
		results = append(results, MatchResult{
			Portfolio:  p,
			Score:      score,
			Percentage: Percentage(score, cfg),
		})
	}
	sortByScore(results)
	return results
}

// matchScore applies the additive category-alignment rules to one portfolio.
func matchScore(p model.Portfolio, agg model.ScoreVector, cfg config.MatchConfig) float64 {
	var score float64

	if p.HasFlavor(model.CategoryGrowth) && agg.Growth > agg.Income && agg.Growth > agg.Defensive {
		score += float64(agg.Growth) * cfg.GrowthMultiplier
	}
	if p.HasFlavor(model.CategoryIncome) && agg.Income >= agg.Growth {
		score += float64(agg.Income) * cfg.IncomeMultiplier
	}
	if p.Category == model.CategoryDefensive && agg.Defensive > agg.Growth {
		score += float64(agg.Defensive) * cfg.DefensiveMultiplier
	}
	if p.Category == model.CategoryBalanced && abs(agg.Growth-agg.Income) <= cfg.BalancedTolerance {
		score += cfg.BalancedBonus
	}

	// ESG preference rewards ESG portfolios; no preference rewards the rest.
	esg := p.HasFlavor(model.CategoryESG)
	switch {
	case esg && agg.ESG >= cfg.ESGThreshold:
		score += float64(agg.ESG) * cfg.ESGMultiplier
	case !esg && agg.ESG < cfg.ESGThreshold:
		score += cfg.NonESGBonus
	}

	return score
}

// sortByScore sorts results descending by Score. Insertion sort keeps ties in
// catalog order.
func sortByScore(results []MatchResult) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

// Top returns at most n results. n <= 0 returns all of them.
func Top(results []MatchResult, n int) []MatchResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// MatchSummary returns a one-line description of the best match.
func MatchSummary(results []MatchResult) string {
	if len(results) == 0 {
		return "no portfolios"
	}
	best := results[0]
	return fmt.Sprintf("%s (%s) %d%%", best.Portfolio.Name, best.Portfolio.Ticker, best.Percentage)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
