// Package catalog holds the static reference data served by the adviser tools:
// funds, both questionnaires, risk profiles, match portfolios and site content.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

//go:embed data/*.yaml
var dataFS embed.FS

// embeddedFiles lists the data files in load order.
var embeddedFiles = []string{"funds.yaml", "risk.yaml", "match.yaml", "content.yaml"}

// Catalog is an immutable snapshot of the reference data. Accessors return
// fresh slices; the records inside must be treated as read-only.
type Catalog struct {
	riskLabels     []string
	funds          []model.Fund
	riskQuestions  []model.RiskQuestion
	riskProfiles   []model.RiskProfile
	matchQuestions []model.MatchQuestion
	portfolios     []model.Portfolio
	insights       []model.Insight
	solutions      []model.Solution
}

// document is the on-disk shape shared by the embedded files and override files.
type document struct {
	RiskLabels     []string              `yaml:"risk_labels"`
	Funds          []model.Fund          `yaml:"funds"`
	RiskQuestions  []model.RiskQuestion  `yaml:"risk_questions"`
	RiskProfiles   []model.RiskProfile   `yaml:"risk_profiles"`
	MatchQuestions []model.MatchQuestion `yaml:"match_questions"`
	Portfolios     []model.Portfolio     `yaml:"portfolios"`
	Insights       []model.Insight       `yaml:"insights"`
	Solutions      []model.Solution      `yaml:"solutions"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog. It is decoded and validated once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		var doc document
		if err := decodeEmbedded(&doc); err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = build(doc)
	})
	return defaultCat, defaultErr
}

// MustDefault is like Default but panics on error. The embedded data is
// covered by tests, so a failure here is a build defect.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads an override file on top of the embedded data. Any top-level
// section present in the file replaces the embedded section wholesale.
func LoadFile(p string) (*Catalog, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", p)
	}

	var doc document
	if err := decodeEmbedded(&doc); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", p)
	}
	return build(doc)
}

// Load returns the embedded catalog when p is empty and the override otherwise.
func Load(p string) (*Catalog, error) {
	if p == "" {
		return Default()
	}
	return LoadFile(p)
}

func decodeEmbedded(doc *document) error {
	for _, name := range embeddedFiles {
		data, err := dataFS.ReadFile(path.Join("data", name))
		if err != nil {
			return eris.Wrapf(err, "catalog: read embedded %s", name)
		}
		if err := yaml.Unmarshal(data, doc); err != nil {
			return eris.Wrapf(err, "catalog: parse embedded %s", name)
		}
	}
	return nil
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		riskLabels:     doc.RiskLabels,
		funds:          doc.Funds,
		riskQuestions:  doc.RiskQuestions,
		riskProfiles:   doc.RiskProfiles,
		matchQuestions: doc.MatchQuestions,
		portfolios:     doc.Portfolios,
		insights:       doc.Insights,
		solutions:      doc.Solutions,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the structural invariants of the reference data and
// reports every violation found.
func (c *Catalog) Validate() error {
	var errs []string

	if len(c.riskLabels) != 5 {
		errs = append(errs, fmt.Sprintf("risk_labels: want 5 labels, got %d", len(c.riskLabels)))
	}

	fundIDs := make(map[string]bool, len(c.funds))
	for _, f := range c.funds {
		if f.ID == "" {
			errs = append(errs, fmt.Sprintf("fund %q: missing id", f.Name))
		}
		if fundIDs[f.ID] {
			errs = append(errs, fmt.Sprintf("fund %q: duplicate id", f.ID))
		}
		fundIDs[f.ID] = true
		if f.RiskLevel < 1 || f.RiskLevel > 5 {
			errs = append(errs, fmt.Sprintf("fund %q: risk_level %d out of range 1-5", f.ID, f.RiskLevel))
		}
		if total := f.AssetAllocation.Total(); total != 100 {
			errs = append(errs, fmt.Sprintf("fund %q: asset_allocation sums to %d, want 100", f.ID, total))
		}
	}

	if len(c.riskQuestions) == 0 {
		errs = append(errs, "risk_questions: empty")
	}
	riskIDs := make(map[int]bool, len(c.riskQuestions))
	for _, q := range c.riskQuestions {
		if riskIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("risk question %d: duplicate id", q.ID))
		}
		riskIDs[q.ID] = true
		if !q.Category.Valid() {
			errs = append(errs, fmt.Sprintf("risk question %d: unknown category %q", q.ID, q.Category))
		}
		if len(q.Options) == 0 {
			errs = append(errs, fmt.Sprintf("risk question %d: no options", q.ID))
		}
		for _, o := range q.Options {
			if o.Score < 1 || o.Score > 5 {
				errs = append(errs, fmt.Sprintf("risk question %d: option score %d out of range 1-5", q.ID, o.Score))
			}
		}
	}

	if len(c.riskProfiles) != 5 {
		errs = append(errs, fmt.Sprintf("risk_profiles: want 5 profiles, got %d", len(c.riskProfiles)))
	}
	for i, p := range c.riskProfiles {
		if p.Level != i+1 {
			errs = append(errs, fmt.Sprintf("risk profile %q: level %d at position %d", p.Name, p.Level, i+1))
		}
		if total := p.Allocation.Total(); total != 100 {
			errs = append(errs, fmt.Sprintf("risk profile %q: allocation sums to %d, want 100", p.Name, total))
		}
	}

	matchIDs := make(map[string]bool, len(c.matchQuestions))
	for _, q := range c.matchQuestions {
		if matchIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("match question %q: duplicate id", q.ID))
		}
		matchIDs[q.ID] = true
		if q.Mode != model.ModeSingle && q.Mode != model.ModeMultiple {
			errs = append(errs, fmt.Sprintf("match question %q: unknown mode %q", q.ID, q.Mode))
		}
		values := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if values[o.Value] {
				errs = append(errs, fmt.Sprintf("match question %q: duplicate option %q", q.ID, o.Value))
			}
			values[o.Value] = true
			s := o.Score
			if s.Growth < 0 || s.Income < 0 || s.Defensive < 0 || s.ESG < 0 {
				errs = append(errs, fmt.Sprintf("match question %q: option %q has a negative score", q.ID, o.Value))
			}
		}
	}

	tickers := make(map[string]bool, len(c.portfolios))
	for _, p := range c.portfolios {
		if tickers[p.Ticker] {
			errs = append(errs, fmt.Sprintf("portfolio %q: duplicate ticker", p.Ticker))
		}
		tickers[p.Ticker] = true
		if p.RiskLevel < 1 || p.RiskLevel > 5 {
			errs = append(errs, fmt.Sprintf("portfolio %q: risk_level %d out of range 1-5", p.Ticker, p.RiskLevel))
		}
	}

	slugs := make(map[string]bool, len(c.insights))
	for _, in := range c.insights {
		if slugs[in.Slug] {
			errs = append(errs, fmt.Sprintf("insight %q: duplicate slug", in.Slug))
		}
		slugs[in.Slug] = true
	}

	if len(errs) > 0 {
		return eris.Errorf("catalog: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
