// Package scorer implements the risk-profiling and fund-match scorers.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/config"
)

// ValidateMatchConfig checks that a MatchConfig is internally consistent.
func ValidateMatchConfig(c config.MatchConfig) error {
	var errs []string

	// All weights must be non-negative.
	weights := []struct {
		name string
		w    float64
	}{
		{"growth_multiplier", c.GrowthMultiplier},
		{"income_multiplier", c.IncomeMultiplier},
		{"defensive_multiplier", c.DefensiveMultiplier},
		{"balanced_bonus", c.BalancedBonus},
		{"esg_multiplier", c.ESGMultiplier},
		{"non_esg_bonus", c.NonESGBonus},
	}
	for _, w := range weights {
		if w.w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", w.name))
		}
	}

	// Thresholds.
	if c.BalancedTolerance < 0 {
		errs = append(errs, "balanced_tolerance must be >= 0")
	}
	if c.ESGThreshold < 0 {
		errs = append(errs, "esg_threshold must be >= 0")
	}

	// Percentage derivation divides by this.
	if c.Normalization <= 0 || math.IsNaN(c.Normalization) {
		errs = append(errs, "normalization must be > 0")
	}
	if c.TopN < 0 {
		errs = append(errs, "top_n must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Percentage converts a raw match score to a 0-100 display value:
// min(round(score / normalization * 100), 100).
func Percentage(score float64, cfg config.MatchConfig) int {
	if cfg.Normalization <= 0 || score <= 0 {
		return 0
	}
	pct := math.Round(score / cfg.Normalization * 100)
	if pct > 100 {
		return 100
	}
	return int(pct)
}
