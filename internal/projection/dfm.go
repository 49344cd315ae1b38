package projection

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/config"
)

// ErrUnknownApproach is returned for a current approach other than diy or advisory.
var ErrUnknownApproach = eris.New("projection: unknown approach")

// DFMInput describes a comparison of an adviser's current approach with a
// discretionary fund manager.
type DFMInput struct {
	Principal          float64 `json:"principal"`
	AnnualContribution float64 `json:"annual_contribution"`
	Years              int     `json:"years"`
	CurrentApproach    string  `json:"current_approach"`
	ClientCount        int     `json:"client_count"`
}

// DFMResult is the growth comparison plus the adviser time metrics.
type DFMResult struct {
	*Series

	Current          config.Assumption `json:"current"`
	DFM              config.Assumption `json:"dfm"`
	CurrentNetReturn float64           `json:"current_net_return"`
	DFMNetReturn     float64           `json:"dfm_net_return"`
	CurrentTimeSpent float64           `json:"current_time_spent"`
	DFMTimeSpent     float64           `json:"dfm_time_spent"`
	TimeSaved        float64           `json:"time_saved"`
}

// DefaultDFMInput returns the calculator's starting inputs.
func DefaultDFMInput(p config.ProjectionConfig) DFMInput {
	return DFMInput{
		Principal:          p.DefaultPrincipal,
		AnnualContribution: p.DefaultContribution,
		Years:              p.DefaultYears,
		CurrentApproach:    p.DefaultApproach,
		ClientCount:        p.DefaultClients,
	}
}

// ProjectDFM projects the current approach as scenario A against the DFM
// assumptions as scenario B.
func ProjectDFM(in DFMInput, assumptions config.ProjectionConfig) (*DFMResult, error) {
	if in.CurrentApproach != "diy" && in.CurrentApproach != "advisory" {
		return nil, eris.Wrapf(ErrUnknownApproach, "projection: approach %q", in.CurrentApproach)
	}
	current, _ := assumptions.Approach(in.CurrentApproach)
	dfm := assumptions.DFM

	series := Project(Input{
		Principal:          in.Principal,
		AnnualContribution: in.AnnualContribution,
		Years:              in.Years,
		A:                  Scenario{Rate: current.AnnualReturn, Fee: current.Fee},
		B:                  Scenario{Rate: dfm.AnnualReturn, Fee: dfm.Fee},
	})

	clients := float64(in.ClientCount)
	return &DFMResult{
		Series:           series,
		Current:          current,
		DFM:              dfm,
		CurrentNetReturn: current.NetReturn(),
		DFMNetReturn:     dfm.NetReturn(),
		CurrentTimeSpent: clients * current.HoursPerClient,
		DFMTimeSpent:     clients * dfm.HoursPerClient,
		TimeSaved:        TimeSaved(in.ClientCount, current.HoursPerClient, dfm.HoursPerClient),
	}, nil
}

// TimeSaved is the annual adviser hours recovered across a client bank.
func TimeSaved(clients int, hoursA, hoursB float64) float64 {
	return float64(clients) * (hoursA - hoursB)
}

// Summary returns a one-line description of the comparison.
func (r *DFMResult) Summary() string {
	return fmt.Sprintf("%s, %.0f hours saved", r.Series.Summary(), r.TimeSaved)
}
