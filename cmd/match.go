package main

import (
	"fmt"
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
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank portfolios against a fund-match questionnaire",
	Long: `Score the six-question fund-match questionnaire and rank the portfolios by fit.

Examples:
  match --answers objective=capital-growth,timeHorizon=very-long,riskTolerance=aggressive,incomeNeeds=no-income,esgPreference=not-important,investmentSize=under-100k

  # Full ranking to a spreadsheet
  match --file client.yaml --top 0 --format xlsx --output match.xlsx`,
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.String("answers", "", "comma-separated question=value pairs; separate multiple values with |")
	f.String("file", "", "YAML file with a match answer set")
	f.Int("top", 0, "number of portfolios to show (0 = all, default from config for table output)")
	f.String("format", "table", "output format: table, csv or xlsx")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "store the result as an assessment")
	f.String("client-ref", "", "client reference stored with the assessment")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("calc"); err != nil {
		return err
	}

	answersFlag, _ := cmd.Flags().GetString("answers")
	file, _ := cmd.Flags().GetString("file")
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

	cat, err := initCatalog()
	if err != nil {
		return err
	}
	ms, err := newMatchScorer(cat)
	if err != nil {
		return err
	}

	answers, fileRef, err := matchAnswersFromFlags(answersFlag, file, cat.MatchQuestions())
	if err != nil {
		return err
	}
	if clientRef == "" {
		clientRef = fileRef
	}

	results, err := scoreMatch(ms, answers)
	if err != nil {
		return err
	}

	top := cfg.Match.TopN
	if cmd.Flags().Changed("top") {
		top, _ = cmd.Flags().GetInt("top")
	}
	if top < 0 {
		return eris.Errorf("--top must be >= 0 (got %d)", top)
	}
	shown := results
	if top > 0 {
		shown = scorer.Top(results, top)
	}

	w, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		err = export.WriteMatchCSV(w, shown)
	case "xlsx":
		err = export.WriteMatchXLSX(w, shown)
	default:
		err = writeMatchTable(w, shown)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if save {
		id, err := saveAssessment(ctx, func() (*model.Assessment, error) {
			return ms.MatchAssessment(clientRef, answers, results)
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

func matchAnswersFromFlags(answers, file string, questions []model.MatchQuestion) (model.AnswerSet, string, error) {
	switch {
	case answers != "" && file != "":
		return nil, "", eris.New("use either --answers or --file, not both")
	case answers != "":
		a, err := parseMatchAnswers(answers, questions)
		return a, "", err
	case file != "":
		f, err := readAnswerFile(file)
		if err != nil {
			return nil, "", err
		}
		if len(f.Match) == 0 {
			return nil, "", eris.Errorf("%s has no match answers", file)
		}
		return f.Match, f.ClientRef, nil
	}
	return nil, "", eris.New("one of --answers or --file is required")
}

func scoreMatch(s *scorer.MatchScorer, answers model.AnswerSet) ([]scorer.MatchResult, error) {
	start := time.Now()
	results, err := s.Match(answers)
	metrics.Observe(metrics.CalcMatch, start, err, rejectedErrors...)
	return results, err
}

func writeMatchTable(w io.Writer, results []scorer.MatchResult) error {
	tw := newTable(w)
	p := &printer{w: tw}
	p.printf("RANK\tPORTFOLIO\tTICKER\tRISK\tSCORE\tMATCH\n")
	for i, r := range results {
		p.printf("%d\t%s\t%s\t%d\t%.0f\t%s\n", i+1, r.Portfolio.Name, r.Portfolio.Ticker,
			r.Portfolio.RiskLevel, r.Score, fmt.Sprintf("%d%%", r.Percentage))
	}
	if p.err != nil {
		return p.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(results) > 0 && len(results[0].Portfolio.KeyFeatures) > 0 {
		_, err := fmt.Fprintf(w, "\nBest match: %s\n", strings.Join(results[0].Portfolio.KeyFeatures, "; "))
		return err
	}
	return nil
}
