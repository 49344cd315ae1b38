// Package model defines the domain types shared by the catalog, scorers, store and API.
package model

import "strings"

// AssetAllocation is a fund's split across asset classes, in percent.
type AssetAllocation struct {
	Equity       int `json:"equity" yaml:"equity"`
	Bonds        int `json:"bonds" yaml:"bonds"`
	Alternatives int `json:"alternatives" yaml:"alternatives"`
}

// Total returns the sum of all components.
func (a AssetAllocation) Total() int {
	return a.Equity + a.Bonds + a.Alternatives
}

// Fund is an immutable reference record from the fund catalog.
type Fund struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Category        string          `json:"category" yaml:"category"`
	RiskLevel       int             `json:"risk_level" yaml:"risk_level"`
	YTDReturn       float64         `json:"ytd_return" yaml:"ytd_return"`
	ThreeYearReturn float64         `json:"three_year_return" yaml:"three_year_return"`
	FiveYearReturn  float64         `json:"five_year_return" yaml:"five_year_return"`
	AUM             string          `json:"aum" yaml:"aum"`
	OCF             float64         `json:"ocf" yaml:"ocf"`
	Objective       string          `json:"objective" yaml:"objective"`
	AssetAllocation AssetAllocation `json:"asset_allocation" yaml:"asset_allocation"`
	FactsheetURL    string          `json:"factsheet_url" yaml:"factsheet_url"`
}

// IsESG reports whether the fund sits in the dedicated ESG category.
func (f Fund) IsESG() bool {
	return f.Category == CategoryESG
}

// Category labels used by the catalog and the match rules.
const (
	CategoryGrowth    = "Growth"
	CategoryIncome    = "Income"
	CategoryDefensive = "Defensive"
	CategoryBalanced  = "Balanced"
	CategoryESG       = "ESG"
)

// Portfolio is an entry in the recommendation catalog scored by the fund
// match questionnaire. Its category may combine flavors ("ESG Growth").
type Portfolio struct {
	Name        string   `json:"name" yaml:"name"`
	Ticker      string   `json:"ticker" yaml:"ticker"`
	RiskLevel   int      `json:"risk_level" yaml:"risk_level"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	KeyFeatures []string `json:"key_features" yaml:"key_features"`
}

// HasFlavor reports whether the portfolio category mentions the given label.
func (p Portfolio) HasFlavor(label string) bool {
	return strings.Contains(p.Category, label)
}
