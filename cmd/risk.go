package main

import (
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/metrics"
	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Score a risk-profiling questionnaire",
	Long: `Score the ten-question risk questionnaire and print the matching risk profile,
its model allocation and the funds suited to it.

Examples:
  # Answers inline as question=score
  risk --answers 1=4,2=4,3=3,4=4,5=3,6=4,7=3,8=3,9=4,10=3

  # Answers from a YAML file (risk: {1: 4, 2: 4, ...}) and store the result
  risk --file client.yaml --save --client-ref C-1042`,
	RunE: runRisk,
}

func init() {
	f := riskCmd.Flags()
	f.String("answers", "", "comma-separated question=score pairs")
	f.String("file", "", "YAML file with a risk answer set")
	f.String("format", "table", "output format: table or json")
	f.Bool("save", false, "store the result as an assessment")
	f.String("client-ref", "", "client reference stored with the assessment")

	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("calc"); err != nil {
		return err
	}

	answersFlag, _ := cmd.Flags().GetString("answers")
	file, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")
	clientRef, _ := cmd.Flags().GetString("client-ref")

	if err := checkFormat(format, "table", "json"); err != nil {
		return err
	}

	answers, fileRef, err := riskAnswersFromFlags(answersFlag, file)
	if err != nil {
		return err
	}
	if clientRef == "" {
		clientRef = fileRef
	}

	cat, err := initCatalog()
	if err != nil {
		return err
	}
	res, err := scoreRisk(newRiskScorer(cat), answers)
	if err != nil {
		return err
	}
	rec, err := cat.RecommendedFunds(res.Profile.Level)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := writeJSON(out, map[string]any{"result": res, "recommended": rec}); err != nil {
			return err
		}
	} else if err := writeRiskTable(out, res, rec); err != nil {
		return err
	}

	if save {
		id, err := saveAssessment(ctx, func() (*model.Assessment, error) {
			return scorer.RiskAssessment(clientRef, answers, res)
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

func riskAnswersFromFlags(answers, file string) (model.RiskAnswers, string, error) {
	switch {
	case answers != "" && file != "":
		return nil, "", eris.New("use either --answers or --file, not both")
	case answers != "":
		a, err := parseRiskAnswers(answers)
		return a, "", err
	case file != "":
		f, err := readAnswerFile(file)
		if err != nil {
			return nil, "", err
		}
		if len(f.Risk) == 0 {
			return nil, "", eris.Errorf("%s has no risk answers", file)
		}
		return f.Risk, f.ClientRef, nil
	}
	return nil, "", eris.New("one of --answers or --file is required")
}

func scoreRisk(s *scorer.RiskScorer, answers model.RiskAnswers) (*scorer.RiskResult, error) {
	start := time.Now()
	res, err := s.Score(answers)
	metrics.Observe(metrics.CalcRisk, start, err, rejectedErrors...)
	return res, err
}

func writeRiskTable(w io.Writer, res *scorer.RiskResult, rec *catalog.Recommendation) error {
	p := &printer{w: w}
	prof := res.Profile
	p.printf("Profile:      %s (level %d)\n", prof.Name, prof.Level)
	p.printf("              %s\n", prof.Description)
	p.printf("Goals:        %.2f\n", res.GoalsScore)
	p.printf("Capacity:     %.2f\n", res.CapacityScore)
	p.printf("Tolerance:    %.2f\n", res.ToleranceScore)
	p.printf("Effective:    %.2f\n", res.EffectiveScore)
	p.printf("Total score:  %d (normalized %.1f)\n", res.TotalScore, res.NormalizedScore)

	a := prof.Allocation
	p.printf("\nModel allocation\n")
	p.printf("  Equities %d%%  Bonds %d%%  Alternatives %d%%  Cash %d%%\n", a.Equities, a.Bonds, a.Alternatives, a.Cash)

	p.printf("\nRecommended funds (%s)\n", rec.RiskLabel)
	for _, f := range rec.Primary {
		p.printf("  * %-32s risk %d  5y %.1f%%\n", f.Name, f.RiskLevel, f.FiveYearReturn)
	}
	for _, f := range rec.Alternatives {
		p.printf("    %-32s risk %d  5y %.1f%%\n", f.Name, f.RiskLevel, f.FiveYearReturn)
	}
	return p.err
}
