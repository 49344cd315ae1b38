package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreVectorAdd(t *testing.T) {
	t.Parallel()

	t.Run("adds all fields", func(t *testing.T) {
		t.Parallel()
		a := ScoreVector{Growth: 3, Income: 1}
		b := ScoreVector{Growth: 2, Defensive: 1, ESG: 3}
		assert.Equal(t, ScoreVector{Growth: 5, Income: 1, Defensive: 1, ESG: 3}, a.Add(b))
	})

	t.Run("add zero is no-op", func(t *testing.T) {
		t.Parallel()
		a := ScoreVector{Growth: 3, ESG: 2}
		assert.Equal(t, a, a.Add(ScoreVector{}))
	})
}

func TestRiskQuestionOffersScore(t *testing.T) {
	t.Parallel()

	q := RiskQuestion{ID: 10, Options: []RiskOption{{Score: 2}, {Score: 3}, {Score: 4}, {Score: 4}, {Score: 5}}}
	assert.True(t, q.OffersScore(2))
	assert.True(t, q.OffersScore(5))
	assert.False(t, q.OffersScore(1))
	assert.False(t, q.OffersScore(6))
}

func TestRiskCategoryValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cat  RiskCategory
		want bool
	}{
		{RiskCapacity, true},
		{RiskTolerance, true},
		{RiskGoals, true},
		{"appetite", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cat.Valid(), string(tt.cat))
	}
}

func TestMatchQuestionOption(t *testing.T) {
	t.Parallel()

	q := MatchQuestion{ID: "objective", Options: []MatchOption{
		{Value: "capital-growth", Score: ScoreVector{Growth: 3}},
		{Value: "balanced", Score: ScoreVector{Growth: 2, Income: 2, Defensive: 1}},
	}}

	opt, ok := q.Option("balanced")
	assert.True(t, ok)
	assert.Equal(t, 2, opt.Score.Income)

	_, ok = q.Option("speculation")
	assert.False(t, ok)
}

func TestAllocationTotals(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, Allocation{Equities: 50, Bonds: 35, Alternatives: 10, Cash: 5}.Total())
	assert.Equal(t, 100, AssetAllocation{Equity: 85, Bonds: 10, Alternatives: 5}.Total())
}

func TestPortfolioHasFlavor(t *testing.T) {
	t.Parallel()

	p := Portfolio{Category: "ESG Growth"}
	assert.True(t, p.HasFlavor(CategoryESG))
	assert.True(t, p.HasFlavor(CategoryGrowth))
	assert.False(t, p.HasFlavor(CategoryIncome))
}

func TestAssessmentKindValid(t *testing.T) {
	t.Parallel()

	assert.True(t, KindRiskProfile.Valid())
	assert.True(t, KindFundMatch.Valid())
	assert.True(t, KindProjection.Valid())
	assert.False(t, AssessmentKind("pension").Valid())
}

func TestEnquiryTypeValid(t *testing.T) {
	t.Parallel()

	for _, et := range []EnquiryType{EnquiryPartnership, EnquirySolutions, EnquirySupport, EnquiryMedia, EnquiryOther} {
		assert.True(t, et.Valid(), string(et))
	}
	assert.False(t, EnquiryType("complaint").Valid())
	assert.False(t, EnquiryType("").Valid())
}

func TestNewAssessment(t *testing.T) {
	t.Parallel()

	a, err := NewAssessment(KindProjection, "client-7", map[string]int{"years": 10}, []int{1, 2}, "summary")
	if !assert.NoError(t, err) {
		return
	}
	assert.Len(t, a.ID, 36)
	assert.Equal(t, KindProjection, a.Kind)
	assert.Equal(t, "client-7", a.ClientRef)
	assert.JSONEq(t, `{"years":10}`, string(a.Input))
	assert.JSONEq(t, `[1,2]`, string(a.Result))
	assert.False(t, a.CreatedAt.IsZero())

	_, err = NewAssessment(KindProjection, "", make(chan int), nil, "")
	assert.Error(t, err)
}
