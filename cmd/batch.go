package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
	"github.com/sequoia-invest/adviser-tools/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score many clients' questionnaires concurrently",
	Long: `Score a YAML file of client answer sets. Each entry may carry a risk answer
set, a match answer set, or both:

  clients:
    - client_ref: C-1042
      risk: {1: 4, 2: 4, 3: 3, 4: 4, 5: 3, 6: 4, 7: 3, 8: 3, 9: 4, 10: 3}
      match:
        objective: capital-growth
        timeHorizon: long

A CSV or XLSX sheet works too: a client_ref column followed by one column per
question ID (1-10 for risk, the match question IDs for matching).

Entries that fail to score are reported and do not stop the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.Int("concurrency", 0, "max entries scored at once (default from config)")
	f.Bool("save", false, "store every successful result as an assessment")
	f.String("output", "", "CSV output path (default: stdout)")

	rootCmd.AddCommand(batchCmd)
}

// batchEntry is one client in a batch file.
type batchEntry struct {
	ClientRef string            `yaml:"client_ref"`
	Risk      model.RiskAnswers `yaml:"risk"`
	Match     model.AnswerSet   `yaml:"match"`
}

type batchFile struct {
	Clients []batchEntry `yaml:"clients"`
}

// batchOutcome is the result of scoring one answer set of one entry.
type batchOutcome struct {
	ClientRef    string
	Kind         model.AssessmentKind
	Summary      string
	AssessmentID string
	Err          error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("batch"); err != nil {
		return err
	}
	log := zap.L().With(zap.String("command", "batch"))

	concurrency := cfg.Batch.MaxConcurrent
	if cmd.Flags().Changed("concurrency") {
		concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if concurrency < 1 {
		return eris.Errorf("--concurrency must be >= 1 (got %d)", concurrency)
	}
	save, _ := cmd.Flags().GetBool("save")
	outputPath, _ := cmd.Flags().GetString("output")

	cat, err := initCatalog()
	if err != nil {
		return err
	}
	ms, err := newMatchScorer(cat)
	if err != nil {
		return err
	}

	entries, err := readBatchFile(args[0], cat.MatchQuestions())
	if err != nil {
		return err
	}

	var st store.Store
	if save {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		if st, err = initStore(ctx); err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "batch: migrate")
		}
	}

	outcomes, err := scoreBatch(ctx, entries, newRiskScorer(cat), ms, st, concurrency)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Warn("batch: entry failed",
				zap.String("client_ref", o.ClientRef),
				zap.String("kind", string(o.Kind)),
				zap.Error(o.Err),
			)
		}
	}
	log.Info("batch: complete",
		zap.Int("entries", len(entries)),
		zap.Int("results", len(outcomes)),
		zap.Int("failed", failed),
	)

	w, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	err = writeBatchCSV(w, outcomes)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

// readBatchFile reads a YAML batch file, or a CSV or XLSX sheet with one
// client per row.
func readBatchFile(path string, questions []model.MatchQuestion) ([]batchEntry, error) {
	var (
		entries []batchEntry
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var rows [][]string
		if rows, err = readCSVRows(path); err == nil {
			entries, err = entriesFromRows(rows, questions)
		}
	case ".xlsx":
		var rows [][]string
		if rows, err = readXLSXRows(path); err == nil {
			entries, err = entriesFromRows(rows, questions)
		}
	default:
		entries, err = readBatchYAML(path)
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, eris.Errorf("batch: %s has no clients", path)
	}
	return entries, nil
}

func readBatchYAML(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "batch: parse %s", path)
	}
	return f.Clients, nil
}

// scoreBatch scores every entry with at most limit entries in flight.
// Outcomes keep file order. st may be nil, in which case nothing is saved.
func scoreBatch(ctx context.Context, entries []batchEntry, risk *scorer.RiskScorer, match *scorer.MatchScorer, st store.Store, limit int) ([]batchOutcome, error) {
	perEntry := make([][]batchOutcome, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			perEntry[i] = scoreEntry(gctx, e, risk, match, st)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: cancelled")
	}

	var out []batchOutcome
	for _, o := range perEntry {
		out = append(out, o...)
	}
	return out, nil
}

func scoreEntry(ctx context.Context, e batchEntry, risk *scorer.RiskScorer, match *scorer.MatchScorer, st store.Store) []batchOutcome {
	if len(e.Risk) == 0 && len(e.Match) == 0 {
		return []batchOutcome{{ClientRef: e.ClientRef, Err: eris.New("entry has no answers")}}
	}

	var out []batchOutcome
	if len(e.Risk) > 0 {
		o := batchOutcome{ClientRef: e.ClientRef, Kind: model.KindRiskProfile}
		res, err := scoreRisk(risk, e.Risk)
		if err != nil {
			o.Err = err
		} else {
			o.Summary = res.Summary()
			o.AssessmentID, o.Err = saveOutcome(ctx, st, func() (*model.Assessment, error) {
				return scorer.RiskAssessment(e.ClientRef, e.Risk, res)
			})
		}
		out = append(out, o)
	}
	if len(e.Match) > 0 {
		o := batchOutcome{ClientRef: e.ClientRef, Kind: model.KindFundMatch}
		results, err := scoreMatch(match, e.Match)
		if err != nil {
			o.Err = err
		} else {
			o.Summary = scorer.MatchSummary(results)
			o.AssessmentID, o.Err = saveOutcome(ctx, st, func() (*model.Assessment, error) {
				return match.MatchAssessment(e.ClientRef, e.Match, results)
			})
		}
		out = append(out, o)
	}
	return out
}

func saveOutcome(ctx context.Context, st store.Store, build func() (*model.Assessment, error)) (string, error) {
	if st == nil {
		return "", nil
	}
	a, err := build()
	if err != nil {
		return "", err
	}
	if err := st.SaveAssessment(ctx, a); err != nil {
		return "", eris.Wrap(err, "batch: save assessment")
	}
	return a.ID, nil
}

func writeBatchCSV(w io.Writer, outcomes []batchOutcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client_ref", "kind", "summary", "assessment_id", "error"}); err != nil {
		return eris.Wrap(err, "batch: write CSV header")
	}
	for _, o := range outcomes {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		row := []string{o.ClientRef, string(o.Kind), o.Summary, o.AssessmentID, errText}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "batch: write CSV row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "batch: flush CSV")
	}
	return nil
}
