package catalog

import (
	"slices"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// MaxCompare is the most funds that can be compared side by side.
const MaxCompare = 3

var (
	ErrFundNotFound    = eris.New("catalog: fund not found")
	ErrInsightNotFound = eris.New("catalog: insight not found")
	ErrTooManyFunds    = eris.New("catalog: too many funds to compare")
	ErrRiskLevel       = eris.New("catalog: risk level out of range")
)

// FundFilter narrows the fund list. Zero bounds default to the full 1..5 range.
type FundFilter struct {
	MinRisk int
	MaxRisk int
	ESGOnly bool
}

// Recommendation splits funds suited to a risk level into the best fits and
// the adjacent-level alternatives.
type Recommendation struct {
	RiskLevel    int          `json:"risk_level"`
	RiskLabel    string       `json:"risk_label"`
	Primary      []model.Fund `json:"primary"`
	Alternatives []model.Fund `json:"alternatives"`
}

// Funds returns every fund in catalog order.
func (c *Catalog) Funds() []model.Fund {
	return slices.Clone(c.funds)
}

// Fund returns the fund with the given ID.
func (c *Catalog) Fund(id string) (model.Fund, error) {
	for _, f := range c.funds {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Fund{}, eris.Wrapf(ErrFundNotFound, "catalog: fund %q", id)
}

// FilterFunds returns funds within the inclusive risk range, optionally
// restricted to the ESG category. Catalog order is preserved.
func (c *Catalog) FilterFunds(f FundFilter) []model.Fund {
	lo, hi := f.MinRisk, f.MaxRisk
	if lo <= 0 {
		lo = 1
	}
	if hi <= 0 {
		hi = 5
	}

	out := make([]model.Fund, 0, len(c.funds))
	for _, fund := range c.funds {
		if fund.RiskLevel < lo || fund.RiskLevel > hi {
			continue
		}
		if f.ESGOnly && !fund.IsESG() {
			continue
		}
		out = append(out, fund)
	}
	return out
}

// CompareFunds returns the selected funds in catalog order. Duplicate IDs are
// collapsed before the MaxCompare limit is applied.
func (c *Catalog) CompareFunds(ids []string) ([]model.Fund, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := c.Fund(id); err != nil {
			return nil, err
		}
		want[id] = true
	}
	if len(want) > MaxCompare {
		return nil, eris.Wrapf(ErrTooManyFunds, "catalog: %d selected, max %d", len(want), MaxCompare)
	}

	out := make([]model.Fund, 0, len(want))
	for _, f := range c.funds {
		if want[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}

// RecommendedFunds returns funds within one risk level of riskLevel. Funds at
// the exact level come first as Primary, neighbours follow as Alternatives.
func (c *Catalog) RecommendedFunds(riskLevel int) (*Recommendation, error) {
	label, err := c.RiskLabel(riskLevel)
	if err != nil {
		return nil, err
	}

	near := make([]model.Fund, 0, len(c.funds))
	for _, f := range c.funds {
		if f.RiskLevel >= riskLevel-1 && f.RiskLevel <= riskLevel+1 {
			near = append(near, f)
		}
	}
	sort.SliceStable(near, func(i, j int) bool {
		return near[i].RiskLevel == riskLevel && near[j].RiskLevel != riskLevel
	})

	rec := &Recommendation{
		RiskLevel:    riskLevel,
		RiskLabel:    label,
		Primary:      []model.Fund{},
		Alternatives: []model.Fund{},
	}
	for _, f := range near {
		if f.RiskLevel == riskLevel {
			rec.Primary = append(rec.Primary, f)
		} else {
			rec.Alternatives = append(rec.Alternatives, f)
		}
	}
	return rec, nil
}

// RiskLabel returns the display label for a 1-5 risk level.
func (c *Catalog) RiskLabel(level int) (string, error) {
	if level < 1 || level > len(c.riskLabels) {
		return "", eris.Wrapf(ErrRiskLevel, "catalog: level %d", level)
	}
	return c.riskLabels[level-1], nil
}

// RiskQuestions returns the risk-profiling questionnaire.
func (c *Catalog) RiskQuestions() []model.RiskQuestion {
	return slices.Clone(c.riskQuestions)
}

// RiskProfiles returns the five risk profiles ordered by level.
func (c *Catalog) RiskProfiles() []model.RiskProfile {
	return slices.Clone(c.riskProfiles)
}

// MatchQuestions returns the fund-matching questionnaire.
func (c *Catalog) MatchQuestions() []model.MatchQuestion {
	return slices.Clone(c.matchQuestions)
}

// Portfolios returns the portfolios scored by the fund match questionnaire.
func (c *Catalog) Portfolios() []model.Portfolio {
	return slices.Clone(c.portfolios)
}

// Insights returns every article in publication order, newest first.
func (c *Catalog) Insights() []model.Insight {
	return slices.Clone(c.insights)
}

// Insight returns the article with the given slug.
func (c *Catalog) Insight(slug string) (model.Insight, error) {
	for _, in := range c.insights {
		if in.Slug == slug {
			return in, nil
		}
	}
	return model.Insight{}, eris.Wrapf(ErrInsightNotFound, "catalog: insight %q", slug)
}

// Solutions returns the solutions list.
func (c *Catalog) Solutions() []model.Solution {
	return slices.Clone(c.solutions)
}
