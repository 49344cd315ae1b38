package main

import (
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/store"
)

var assessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "Inspect stored assessments",
}

// -- assessments list --

var assessmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments, newest first",
	RunE:  runAssessmentsList,
}

// -- assessments show --

var assessmentsShowCmd = &cobra.Command{
	Use:   "show <assessment-id>",
	Short: "Show a stored assessment with its input and result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a, err := st.GetAssessment(ctx, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), a)
	},
}

// -- enquiries --

var enquiriesCmd = &cobra.Command{
	Use:   "enquiries",
	Short: "List recent contact enquiries",
	RunE:  runEnquiries,
}

func init() {
	f := assessmentsListCmd.Flags()
	f.String("kind", "", "filter by kind: risk_profile, fund_match or projection")
	f.Int("hours", 0, "only assessments from the last N hours (0 = all)")
	f.Int("limit", 20, "max assessments to show")
	f.Int("offset", 0, "skip this many assessments")
	f.String("format", "table", "output format: table or json")

	enquiriesCmd.Flags().Int("limit", 20, "max enquiries to show")
	enquiriesCmd.Flags().String("format", "table", "output format: table or json")

	assessmentsCmd.AddCommand(assessmentsListCmd, assessmentsShowCmd)
	rootCmd.AddCommand(assessmentsCmd, enquiriesCmd)
}

// openStore validates store settings, opens the store and migrates it.
func openStore(cmd *cobra.Command) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	st, err := initStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(cmd.Context()); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func runAssessmentsList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kind, _ := cmd.Flags().GetString("kind")
	hours, _ := cmd.Flags().GetInt("hours")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	format, _ := cmd.Flags().GetString("format")

	if err := checkFormat(format, "table", "json"); err != nil {
		return err
	}
	filter := store.AssessmentFilter{Kind: model.AssessmentKind(kind), Limit: limit, Offset: offset}
	if kind != "" && !filter.Kind.Valid() {
		return eris.Errorf("--kind must be risk_profile, fund_match or projection (got %q)", kind)
	}
	if hours < 0 {
		return eris.Errorf("--hours must be >= 0 (got %d)", hours)
	}
	if hours > 0 {
		filter.Since = time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	items, err := st.ListAssessments(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "assessments list")
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if items == nil {
			items = []model.Assessment{}
		}
		return writeJSON(out, items)
	}
	if len(items) == 0 {
		p := &printer{w: cmd.ErrOrStderr()}
		p.printf("No assessments found.\n")
		return p.err
	}
	return writeAssessmentsTable(out, items)
}

func writeAssessmentsTable(w io.Writer, items []model.Assessment) error {
	tw := newTable(w)
	p := &printer{w: tw}
	p.printf("ID\tKIND\tCLIENT\tSUMMARY\tCREATED\n")
	for _, a := range items {
		p.printf("%s\t%s\t%s\t%s\t%s\n", a.ID, a.Kind, a.ClientRef, a.Summary, a.CreatedAt.Format(time.RFC3339))
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

func runEnquiries(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "table", "json"); err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	items, err := st.ListEnquiries(ctx, limit)
	if err != nil {
		return eris.Wrap(err, "enquiries list")
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if items == nil {
			items = []model.Enquiry{}
		}
		return writeJSON(out, items)
	}
	if len(items) == 0 {
		p := &printer{w: cmd.ErrOrStderr()}
		p.printf("No enquiries found.\n")
		return p.err
	}

	tw := newTable(out)
	p := &printer{w: tw}
	p.printf("CREATED\tNAME\tEMAIL\tTYPE\tLEAD\n")
	for _, e := range items {
		lead := e.SalesforceLeadID
		if lead == "" {
			lead = "-"
		}
		p.printf("%s\t%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Name, e.Email, e.EnquiryType, lead)
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}
