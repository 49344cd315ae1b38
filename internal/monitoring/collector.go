// Package monitoring summarizes recent assessment and enquiry activity.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// MaxLookbackHours bounds the stats window to one year.
const MaxLookbackHours = 24 * 366

// ErrLookback is returned for a window outside 1..MaxLookbackHours.
var ErrLookback = eris.New("monitoring: lookback out of range")

// Counter is the part of store.Store the collector reads.
type Counter interface {
	CountAssessments(ctx context.Context, since time.Time) (map[model.AssessmentKind]int, error)
	CountEnquiries(ctx context.Context, since time.Time) (int, error)
}

// Snapshot is a point-in-time view of activity within the lookback window.
type Snapshot struct {
	Assessments      map[model.AssessmentKind]int `json:"assessments"`
	AssessmentsTotal int                          `json:"assessments_total"`
	Enquiries        int                          `json:"enquiries"`
	LookbackHours    int                          `json:"lookback_hours"`
	CollectedAt      time.Time                    `json:"collected_at"`
}

// Collector gathers snapshots from the store.
type Collector struct {
	store Counter
	now   func() time.Time
}

// NewCollector creates a new collector.
func NewCollector(st Counter) *Collector {
	return &Collector{store: st, now: time.Now}
}

// Collect counts assessments by kind and enquiries created in the last
// lookbackHours. Every known kind is present in the result, zero or not.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	if lookbackHours < 1 || lookbackHours > MaxLookbackHours {
		return nil, eris.Wrapf(ErrLookback, "monitoring: %d hours", lookbackHours)
	}

	now := c.now().UTC()
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	counts, err := c.store.CountAssessments(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count assessments")
	}
	enquiries, err := c.store.CountEnquiries(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count enquiries")
	}

	snap := &Snapshot{
		Assessments: map[model.AssessmentKind]int{
			model.KindRiskProfile: 0,
			model.KindFundMatch:   0,
			model.KindProjection:  0,
		},
		Enquiries:     enquiries,
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	for kind, n := range counts {
		snap.Assessments[kind] = n
		snap.AssessmentsTotal += n
	}
	return snap, nil
}
