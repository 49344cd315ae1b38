package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var assessmentColumns = []string{"id", "kind", "client_ref", "input", "result", "summary", "created_at"}

var enquiryColumns = []string{"id", "name", "email", "company", "phone", "enquiry_type", "message", "salesforce_lead_id", "created_at"}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS assessments`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAssessment(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &model.Assessment{
		ID:        "a-1",
		Kind:      model.KindFundMatch,
		ClientRef: "c-9",
		Input:     []byte(`{"objective":"capital-growth"}`),
		Result:    []byte(`[]`),
		Summary:   "no portfolios",
		CreatedAt: at,
	}

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("a-1", "fund_match", "c-9", []byte(`{"objective":"capital-growth"}`), []byte(`[]`), "no portfolios", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveAssessment(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAssessment_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	a := &model.Assessment{ID: "a-1", Kind: model.KindRiskProfile, Input: []byte(`{}`), Result: []byte(`{}`)}

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("a-1", "risk_profile", "", []byte(`{}`), []byte(`{}`), "", pgxmock.AnyArg()).
		WillReturnError(errors.New("duplicate key"))

	err := s.SaveAssessment(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert assessment a-1")
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAssessment(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, kind, client_ref, input, result, summary, created_at FROM assessments WHERE id = \$1`).
		WithArgs("a-1").
		WillReturnRows(pgxmock.NewRows(assessmentColumns).
			AddRow("a-1", "projection", "", []byte(`{"years":10}`), []byte(`{"final_a":1}`), "10 years", at))

	got, err := s.GetAssessment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, model.KindProjection, got.Kind)
	assert.JSONEq(t, `{"years":10}`, string(got.Input))
	assert.Equal(t, "10 years", got.Summary)
	assert.True(t, at.Equal(got.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAssessment_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM assessments WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAssessment(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAssessments_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := since.Add(time.Hour)

	mock.ExpectQuery(`FROM assessments WHERE kind = \$1 AND created_at >= \$2 ORDER BY created_at DESC, id LIMIT \$3 OFFSET \$4`).
		WithArgs("risk_profile", since, 5, 10).
		WillReturnRows(pgxmock.NewRows(assessmentColumns).
			AddRow("a-2", "risk_profile", "", []byte(`{}`), []byte(`{}`), "", at).
			AddRow("a-1", "risk_profile", "", []byte(`{}`), []byte(`{}`), "", since))

	list, err := s.ListAssessments(context.Background(), AssessmentFilter{
		Kind:   model.KindRiskProfile,
		Since:  since,
		Limit:  5,
		Offset: 10,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-2", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAssessments_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM assessments ORDER BY created_at DESC, id LIMIT \$1 OFFSET \$2`).
		WithArgs(defaultListLimit, 0).
		WillReturnRows(pgxmock.NewRows(assessmentColumns))

	list, err := s.ListAssessments(context.Background(), AssessmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountAssessments(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT kind, COUNT\(\*\) FROM assessments WHERE created_at >= \$1 GROUP BY kind`).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"kind", "count"}).
			AddRow("risk_profile", int64(4)).
			AddRow("projection", int64(1)))

	counts, err := s.CountAssessments(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[model.KindRiskProfile])
	assert.Equal(t, 1, counts[model.KindProjection])
	assert.Zero(t, counts[model.KindFundMatch])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateEnquiry(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	e := &model.Enquiry{
		Name:        "Sam Patel",
		Email:       "sam@example.com",
		EnquiryType: model.EnquirySolutions,
		Message:     "Tell me about model portfolios.",
	}

	mock.ExpectExec(`INSERT INTO enquiries`).
		WithArgs(pgxmock.AnyArg(), "Sam Patel", "sam@example.com", "", "", "solutions", "Tell me about model portfolios.", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateEnquiry(context.Background(), e))
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetEnquiryLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE enquiries SET salesforce_lead_id = \$1 WHERE id = \$2`).
		WithArgs("00Q1", "e-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.SetEnquiryLead(context.Background(), "e-1", "00Q1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetEnquiryLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE enquiries SET salesforce_lead_id`).
		WithArgs("00Q1", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetEnquiryLead(context.Background(), "missing", "00Q1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEnquiries(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM enquiries ORDER BY created_at DESC, id LIMIT \$1`).
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows(enquiryColumns).
			AddRow("e-1", "Sam", "sam@example.com", "", "07700 900000", "media", "Press query", "00Q1", at))

	list, err := s.ListEnquiries(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.EnquiryMedia, list[0].EnquiryType)
	assert.Equal(t, "00Q1", list[0].SalesforceLeadID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountEnquiries(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enquiries WHERE created_at >= \$1`).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := s.CountEnquiries(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_CloseWithoutPool(t *testing.T) {
	s := &PostgresStore{}
	assert.NoError(t, s.Close())
}

func TestNewPostgres_BadConnString(t *testing.T) {
	_, err := NewPostgres(context.Background(), "://not a url", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: parse config")
}
