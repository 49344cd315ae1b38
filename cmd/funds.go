package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/export"
	"github.com/sequoia-invest/adviser-tools/internal/model"
)

var fundsCmd = &cobra.Command{
	Use:   "funds",
	Short: "List and filter the fund range",
	RunE:  runFunds,
}

var fundsCompareCmd = &cobra.Command{
	Use:   "compare <id> [id...]",
	Short: "Compare up to three funds side by side",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFundsCompare,
}

var fundsRecommendedCmd = &cobra.Command{
	Use:   "recommended",
	Short: "Show funds suited to a risk level",
	RunE:  runFundsRecommended,
}

func init() {
	f := fundsCmd.Flags()
	f.Int("min-risk", 0, "minimum risk level (1-5)")
	f.Int("max-risk", 0, "maximum risk level (1-5)")
	f.Bool("esg", false, "only ESG funds")
	f.String("format", "table", "output format: table, csv or xlsx")
	f.String("output", "", "output file path (default: stdout)")

	fundsRecommendedCmd.Flags().Int("risk", 0, "risk level (1-5)")
	_ = fundsRecommendedCmd.MarkFlagRequired("risk")

	fundsCmd.AddCommand(fundsCompareCmd, fundsRecommendedCmd)
	rootCmd.AddCommand(fundsCmd)
}

func runFunds(cmd *cobra.Command, _ []string) error {
	minRisk, _ := cmd.Flags().GetInt("min-risk")
	maxRisk, _ := cmd.Flags().GetInt("max-risk")
	esg, _ := cmd.Flags().GetBool("esg")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if err := checkFormat(format, "table", "csv", "xlsx"); err != nil {
		return err
	}
	if format == "xlsx" && outputPath == "" {
		return eris.New("--format xlsx requires --output")
	}
	if minRisk < 0 || minRisk > 5 || maxRisk < 0 || maxRisk > 5 {
		return eris.New("--min-risk and --max-risk must be between 1 and 5")
	}

	cat, err := initCatalog()
	if err != nil {
		return err
	}
	funds := cat.FilterFunds(catalog.FundFilter{MinRisk: minRisk, MaxRisk: maxRisk, ESGOnly: esg})

	w, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		err = export.WriteCSV(w, export.FundsSheet(funds))
	case "xlsx":
		err = export.WriteFundsXLSX(w, funds)
	default:
		err = writeFundsTable(w, cat, funds)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

func runFundsCompare(cmd *cobra.Command, args []string) error {
	cat, err := initCatalog()
	if err != nil {
		return err
	}
	funds, err := cat.CompareFunds(args)
	if err != nil {
		return err
	}
	return writeFundsComparison(cmd.OutOrStdout(), cat, funds)
}

func runFundsRecommended(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetInt("risk")
	cat, err := initCatalog()
	if err != nil {
		return err
	}
	rec, err := cat.RecommendedFunds(level)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := &printer{w: out}
	p.printf("Risk level %d: %s\n\nBest fit\n", rec.RiskLevel, rec.RiskLabel)
	if p.err != nil {
		return p.err
	}
	if err := writeFundsTable(out, cat, rec.Primary); err != nil {
		return err
	}
	p.printf("\nAlternatives\n")
	if p.err != nil {
		return p.err
	}
	return writeFundsTable(out, cat, rec.Alternatives)
}

func writeFundsTable(w io.Writer, cat *catalog.Catalog, funds []model.Fund) error {
	tw := newTable(w)
	p := &printer{w: tw}
	p.printf("ID\tNAME\tRISK\tYTD\t3Y\t5Y\tOCF\tAUM\n")
	for _, f := range funds {
		label, _ := cat.RiskLabel(f.RiskLevel)
		p.printf("%s\t%s\t%d %s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.RiskLevel, label,
			export.FormatPercent(f.YTDReturn), export.FormatPercent(f.ThreeYearReturn),
			export.FormatPercent(f.FiveYearReturn), export.FormatPercent(f.OCF), f.AUM)
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// writeFundsComparison prints one column per fund.
func writeFundsComparison(w io.Writer, cat *catalog.Catalog, funds []model.Fund) error {
	tw := newTable(w)
	p := &printer{w: tw}
	row := func(name string, value func(model.Fund) string) {
		p.printf("%s", name)
		for _, f := range funds {
			p.printf("\t%s", value(f))
		}
		p.printf("\n")
	}
	row("", func(f model.Fund) string { return f.Name })
	row("Category", func(f model.Fund) string { return f.Category })
	row("Risk", func(f model.Fund) string {
		label, _ := cat.RiskLabel(f.RiskLevel)
		return label
	})
	row("YTD", func(f model.Fund) string { return export.FormatPercent(f.YTDReturn) })
	row("3 year", func(f model.Fund) string { return export.FormatPercent(f.ThreeYearReturn) })
	row("5 year", func(f model.Fund) string { return export.FormatPercent(f.FiveYearReturn) })
	row("OCF", func(f model.Fund) string { return export.FormatPercent(f.OCF) })
	row("AUM", func(f model.Fund) string { return f.AUM })
	row("Equity", func(f model.Fund) string { return export.FormatPercent(float64(f.AssetAllocation.Equity)) })
	row("Bonds", func(f model.Fund) string { return export.FormatPercent(float64(f.AssetAllocation.Bonds)) })
	row("Alternatives", func(f model.Fund) string { return export.FormatPercent(float64(f.AssetAllocation.Alternatives)) })
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}
