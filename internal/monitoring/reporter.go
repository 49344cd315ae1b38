package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// Reporter logs a snapshot on a fixed interval while the server runs.
type Reporter struct {
	collector     *Collector
	interval      time.Duration
	lookbackHours int
}

// NewReporter creates a periodic reporter. A non-positive interval defaults
// to one hour and a non-positive lookback to 24 hours.
func NewReporter(collector *Collector, interval time.Duration, lookbackHours int) *Reporter {
	if interval <= 0 {
		interval = time.Hour
	}
	if lookbackHours <= 0 {
		lookbackHours = 24
	}
	return &Reporter{collector: collector, interval: interval, lookbackHours: lookbackHours}
}

// Run blocks until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.reporter"))
	log.Info("monitoring: reporter started",
		zap.Duration("interval", r.interval),
		zap.Int("lookback_hours", r.lookbackHours),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("monitoring: reporter stopped")
			return
		case <-ticker.C:
			r.report(ctx, log)
		}
	}
}

func (r *Reporter) report(ctx context.Context, log *zap.Logger) {
	snap, err := r.collector.Collect(ctx, r.lookbackHours)
	if err != nil {
		log.Error("monitoring: collect failed", zap.Error(err))
		return
	}
	log.Info("monitoring: activity",
		zap.Int("risk_profiles", snap.Assessments[model.KindRiskProfile]),
		zap.Int("fund_matches", snap.Assessments[model.KindFundMatch]),
		zap.Int("projections", snap.Assessments[model.KindProjection]),
		zap.Int("enquiries", snap.Enquiries),
	)
}
