package export

import (
	"io"
	"strings"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/projection"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
)

// ProjectionSheet lays out a series one row per year. labelA and labelB
// name the two scenarios in the header.
func ProjectionSheet(s *projection.Series, labelA, labelB string) Sheet {
	sheet := Sheet{
		Name:    "Projection",
		Headers: []string{"Year", labelA, labelB, "Difference"},
		Rows:    make([][]any, 0, len(s.Points)),
	}
	for _, p := range s.Points {
		sheet.Rows = append(sheet.Rows, []any{p.Year, p.A, p.B, p.B - p.A})
	}
	return sheet
}

// projectionSummarySheet holds the headline figures of a series.
func projectionSummarySheet(s *projection.Series) Sheet {
	return Sheet{
		Name:    "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Final value A", s.FinalA},
			{"Final value B", s.FinalB},
			{"Value added", s.ValueAdded},
			{"Percentage gain", s.PercentageGain},
			{"Total contributions", s.TotalContributions},
		},
	}
}

// MatchSheet lists ranked portfolios, best first.
func MatchSheet(results []scorer.MatchResult) Sheet {
	sheet := Sheet{
		Name:    "Matches",
		Headers: []string{"Rank", "Portfolio", "Ticker", "Risk Level", "Score", "Match %", "Key Features"},
		Rows:    make([][]any, 0, len(results)),
	}
	for i, r := range results {
		sheet.Rows = append(sheet.Rows, []any{
			i + 1,
			r.Portfolio.Name,
			r.Portfolio.Ticker,
			r.Portfolio.RiskLevel,
			r.Score,
			r.Percentage,
			strings.Join(r.Portfolio.KeyFeatures, "; "),
		})
	}
	return sheet
}

// FundsSheet lists funds with their performance and allocation.
func FundsSheet(funds []model.Fund) Sheet {
	sheet := Sheet{
		Name: "Funds",
		Headers: []string{
			"ID", "Name", "Category", "Risk Level", "YTD %", "3Y %", "5Y %",
			"AUM", "OCF %", "Equity %", "Bonds %", "Alternatives %",
		},
		Rows: make([][]any, 0, len(funds)),
	}
	for _, f := range funds {
		a := f.AssetAllocation
		sheet.Rows = append(sheet.Rows, []any{
			f.ID, f.Name, f.Category, f.RiskLevel, f.YTDReturn, f.ThreeYearReturn, f.FiveYearReturn,
			f.AUM, f.OCF, a.Equity, a.Bonds, a.Alternatives,
		})
	}
	return sheet
}

// WriteProjectionXLSX writes the yearly series and a summary sheet.
func WriteProjectionXLSX(w io.Writer, s *projection.Series, labelA, labelB string) error {
	return WriteXLSX(w, ProjectionSheet(s, labelA, labelB), projectionSummarySheet(s))
}

// WriteMatchXLSX writes ranked match results.
func WriteMatchXLSX(w io.Writer, results []scorer.MatchResult) error {
	return WriteXLSX(w, MatchSheet(results))
}

// WriteFundsXLSX writes the fund list.
func WriteFundsXLSX(w io.Writer, funds []model.Fund) error {
	return WriteXLSX(w, FundsSheet(funds))
}

// WriteProjectionCSV writes the yearly series.
func WriteProjectionCSV(w io.Writer, s *projection.Series, labelA, labelB string) error {
	return WriteCSV(w, ProjectionSheet(s, labelA, labelB))
}

// WriteMatchCSV writes ranked match results.
func WriteMatchCSV(w io.Writer, results []scorer.MatchResult) error {
	return WriteCSV(w, MatchSheet(results))
}
