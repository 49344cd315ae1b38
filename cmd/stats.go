package main

import (
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/monitoring"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent assessment and enquiry activity",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.Int("hours", 24, "lookback window in hours")
	f.String("format", "table", "output format: table or json")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hours, _ := cmd.Flags().GetInt("hours")
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "table", "json"); err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snap, err := monitoring.NewCollector(st).Collect(ctx, hours)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), snap)
	}
	return writeStatsTable(cmd.OutOrStdout(), snap)
}

func writeStatsTable(w io.Writer, snap *monitoring.Snapshot) error {
	p := &printer{w: w}
	p.printf("Last %d hours (as of %s)\n", snap.LookbackHours, snap.CollectedAt.Format("2006-01-02 15:04 MST"))
	p.printf("  Risk profiles:  %d\n", snap.Assessments[model.KindRiskProfile])
	p.printf("  Fund matches:   %d\n", snap.Assessments[model.KindFundMatch])
	p.printf("  Projections:    %d\n", snap.Assessments[model.KindProjection])
	p.printf("  Total:          %d\n", snap.AssessmentsTotal)
	p.printf("  Enquiries:      %d\n", snap.Enquiries)
	return p.err
}
