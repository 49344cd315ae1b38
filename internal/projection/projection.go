// Package projection computes year-by-year portfolio growth for two
// return/fee scenarios.
package projection

import (
	"fmt"
	"math"
)

// Scenario is an annual return and fee, both in percent.
type Scenario struct {
	Rate float64 `json:"rate"`
	Fee  float64 `json:"fee"`
}

// NetRate is the annual growth factor after fees, as a fraction.
func (s Scenario) NetRate() float64 {
	return (s.Rate - s.Fee) / 100
}

// Input describes a two-scenario projection. Negative horizons and rates are
// valid and never rejected.
type Input struct {
	Principal          float64  `json:"principal"`
	AnnualContribution float64  `json:"annual_contribution"`
	Years              int      `json:"years"`
	A                  Scenario `json:"a"`
	B                  Scenario `json:"b"`
}

// Point is the value of both scenarios at the end of a year.
type Point struct {
	Year int     `json:"year"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
}

// Series is the paired projection with its derived metrics.
type Series struct {
	Points             []Point `json:"points"`
	FinalA             float64 `json:"final_a"`
	FinalB             float64 `json:"final_b"`
	ValueAdded         float64 `json:"value_added"`
	PercentageGain     float64 `json:"percentage_gain"`
	TotalContributions float64 `json:"total_contributions"`
}

// Project iterates both scenarios from the principal. Growth compounds on the
// unrounded value; each emitted yearly value and the finals are rounded to a
// whole unit.
func Project(in Input) *Series {
	years := max(in.Years, 0)
	netA, netB := in.A.NetRate(), in.B.NetRate()

	points := make([]Point, 0, years+1)
	rawA, rawB := in.Principal, in.Principal
	points = append(points, Point{Year: 0, A: in.Principal, B: in.Principal})
	for year := 1; year <= years; year++ {
		rawA = rawA*(1+netA) + in.AnnualContribution
		rawB = rawB*(1+netB) + in.AnnualContribution
		points = append(points, Point{Year: year, A: roundHalfUp(rawA), B: roundHalfUp(rawB)})
	}
	a, b := roundHalfUp(rawA), roundHalfUp(rawB)

	s := &Series{
		Points:             points,
		FinalA:             a,
		FinalB:             b,
		ValueAdded:         b - a,
		TotalContributions: in.AnnualContribution * float64(years),
	}
	if a != 0 {
		s.PercentageGain = roundTenth(s.ValueAdded / a * 100)
	}
	return s
}

// Summary returns a one-line description of the outcome.
func (s *Series) Summary() string {
	return fmt.Sprintf("%d years, value added %.0f (%.1f%%)", len(s.Points)-1, s.ValueAdded, s.PercentageGain)
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
