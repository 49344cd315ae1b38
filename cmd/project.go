package main

import (
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sequoia-invest/adviser-tools/internal/export"
	"github.com/sequoia-invest/adviser-tools/internal/metrics"
	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/projection"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project portfolio growth against a discretionary fund manager",
	Long: `Project a portfolio under the adviser's current approach and under a DFM, and
report the value added and the adviser hours saved. Inputs default to the
projection section of the config.

Passing any of --rate-a, --fee-a, --rate-b or --fee-b runs a plain two-scenario
projection with those rates instead.

Examples:
  project --principal 750000 --contribution 25000 --years 15 --approach diy
  project --principal 100000 --years 20 --rate-a 5 --fee-a 1 --rate-b 5 --fee-b 0.5 --format csv`,
	RunE: runProject,
}

func init() {
	f := projectCmd.Flags()
	f.Float64("principal", 0, "starting value (default from config)")
	f.Float64("contribution", 0, "annual contribution (default from config)")
	f.Int("years", 0, "projection horizon in years (default from config)")
	f.String("approach", "", "current approach: diy or advisory (default from config)")
	f.Int("clients", 0, "number of clients, for time saved (default from config)")
	f.Float64("rate-a", 0, "scenario A annual return, percent")
	f.Float64("fee-a", 0, "scenario A annual fee, percent")
	f.Float64("rate-b", 0, "scenario B annual return, percent")
	f.Float64("fee-b", 0, "scenario B annual fee, percent")
	f.String("format", "table", "output format: table, csv or xlsx")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "store the result as an assessment")
	f.String("client-ref", "", "client reference stored with the assessment")

	rootCmd.AddCommand(projectCmd)
}

// projectionRun is one projection ready to render.
type projectionRun struct {
	series *projection.Series
	dfm    *projection.DFMResult
	labelA string
	labelB string
	build  func(clientRef string) (*model.Assessment, error)
}

func runProject(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("calc"); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	clientRef, _ := cmd.Flags().GetString("client-ref")

	if err := checkFormat(format, "table", "csv", "xlsx"); err != nil {
		return err
	}
	if format == "xlsx" && outputPath == "" {
		return eris.New("--format xlsx requires --output")
	}

	run, err := buildProjection(cmd)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		err = export.WriteProjectionCSV(w, run.series, run.labelA, run.labelB)
	case "xlsx":
		err = export.WriteProjectionXLSX(w, run.series, run.labelA, run.labelB)
	default:
		err = writeProjectionTable(w, run)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if save {
		id, err := saveAssessment(ctx, func() (*model.Assessment, error) {
			return run.build(clientRef)
		})
		if err != nil {
			return err
		}
		p := &printer{w: cmd.ErrOrStderr()}
		p.printf("saved assessment %s\n", id)
		return p.err
	}
	return nil
}

func customScenario(cmd *cobra.Command) bool {
	for _, name := range []string{"rate-a", "fee-a", "rate-b", "fee-b"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// buildProjection runs either the DFM comparison or, when scenario flags
// are given, a plain two-scenario projection.
func buildProjection(cmd *cobra.Command) (*projectionRun, error) {
	in := projection.DefaultDFMInput(cfg.Projection)
	flags := cmd.Flags()
	if flags.Changed("principal") {
		in.Principal, _ = flags.GetFloat64("principal")
	}
	if flags.Changed("contribution") {
		in.AnnualContribution, _ = flags.GetFloat64("contribution")
	}
	if flags.Changed("years") {
		in.Years, _ = flags.GetInt("years")
	}
	if flags.Changed("approach") {
		approach, _ := flags.GetString("approach")
		in.CurrentApproach = strings.ToLower(approach)
	}
	if flags.Changed("clients") {
		in.ClientCount, _ = flags.GetInt("clients")
	}
	if in.Years < 0 {
		return nil, eris.Errorf("--years must be >= 0 (got %d)", in.Years)
	}

	if customScenario(cmd) {
		rateA, _ := flags.GetFloat64("rate-a")
		feeA, _ := flags.GetFloat64("fee-a")
		rateB, _ := flags.GetFloat64("rate-b")
		feeB, _ := flags.GetFloat64("fee-b")
		pin := projection.Input{
			Principal:          in.Principal,
			AnnualContribution: in.AnnualContribution,
			Years:              in.Years,
			A:                  projection.Scenario{Rate: rateA, Fee: feeA},
			B:                  projection.Scenario{Rate: rateB, Fee: feeB},
		}
		start := time.Now()
		series := projection.Project(pin)
		metrics.Observe(metrics.CalcProjection, start, nil)
		return &projectionRun{
			series: series,
			labelA: "Scenario A",
			labelB: "Scenario B",
			build: func(ref string) (*model.Assessment, error) {
				return projection.Assessment(ref, pin, series)
			},
		}, nil
	}

	start := time.Now()
	res, err := projection.ProjectDFM(in, cfg.Projection)
	metrics.Observe(metrics.CalcDFM, start, err, rejectedErrors...)
	if err != nil {
		return nil, err
	}
	return &projectionRun{
		series: res.Series,
		dfm:    res,
		labelA: approachLabel(in.CurrentApproach),
		labelB: "DFM",
		build: func(ref string) (*model.Assessment, error) {
			return projection.DFMAssessment(ref, in, res)
		},
	}, nil
}

func approachLabel(approach string) string {
	switch approach {
	case "diy":
		return "DIY"
	case "advisory":
		return "Advisory"
	}
	return approach
}

func writeProjectionTable(w io.Writer, run *projectionRun) error {
	tw := newTable(w)
	p := &printer{w: tw}
	p.printf("YEAR\t%s\t%s\tDIFFERENCE\n", strings.ToUpper(run.labelA), strings.ToUpper(run.labelB))
	for _, pt := range run.series.Points {
		p.printf("%d\t%s\t%s\t%s\n", pt.Year, export.FormatGBP(pt.A), export.FormatGBP(pt.B), export.FormatGBP(pt.B-pt.A))
	}
	if p.err != nil {
		return p.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := run.series
	p = &printer{w: w}
	p.printf("\nValue added:          %s (%s)\n", export.FormatGBP(s.ValueAdded), export.FormatPercent(s.PercentageGain))
	p.printf("Total contributions:  %s\n", export.FormatGBP(s.TotalContributions))
	if d := run.dfm; d != nil {
		p.printf("Net return:           %s -> %s\n", export.FormatPercent(d.CurrentNetReturn), export.FormatPercent(d.DFMNetReturn))
		p.printf("Adviser hours a year: %.0f -> %.0f (%.0f saved)\n", d.CurrentTimeSpent, d.DFMTimeSpent, d.TimeSaved)
	}
	return p.err
}
