package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	client_ref TEXT NOT NULL DEFAULT '',
	input      TEXT NOT NULL,
	result     TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS enquiries (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	email              TEXT NOT NULL,
	company            TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	enquiry_type       TEXT NOT NULL,
	message            TEXT NOT NULL,
	salesforce_lead_id TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_kind ON assessments(kind);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
CREATE INDEX IF NOT EXISTS idx_enquiries_created_at ON enquiries(created_at);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	if err := checkAssessment(a); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, kind, client_ref, input, result, summary, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Kind), a.ClientRef, string(a.Input), string(a.Result), a.Summary, a.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert assessment %s", a.ID)
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, client_ref, input, result, summary, created_at FROM assessments WHERE id = ?`, id,
	)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("assessment", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get assessment %s", id)
	}
	return a, nil
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	var where []string
	var args []any
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT id, kind, client_ref, input, result, summary, created_at FROM assessments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, listLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assessment")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list assessments iterate")
}

func (s *SQLiteStore) CountAssessments(ctx context.Context, since time.Time) (map[model.AssessmentKind]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM assessments WHERE created_at >= ? GROUP BY kind`, since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count assessments")
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[model.AssessmentKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assessment count")
		}
		counts[model.AssessmentKind(kind)] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count assessments iterate")
}

func (s *SQLiteStore) CreateEnquiry(ctx context.Context, e *model.Enquiry) error {
	if err := prepareEnquiry(e); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enquiries (id, name, email, company, phone, enquiry_type, message, salesforce_lead_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.Company, e.Phone, string(e.EnquiryType), e.Message, e.SalesforceLeadID, e.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert enquiry %s", e.ID)
}

func (s *SQLiteStore) SetEnquiryLead(ctx context.Context, enquiryID, leadID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE enquiries SET salesforce_lead_id = ? WHERE id = ?`, leadID, enquiryID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set enquiry lead %s", enquiryID)
	}
	return checkRowsAffected(res, "enquiry", enquiryID)
}

func (s *SQLiteStore) ListEnquiries(ctx context.Context, limit int) ([]model.Enquiry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, company, phone, enquiry_type, message, salesforce_lead_id, created_at
		FROM enquiries ORDER BY created_at DESC, id LIMIT ?`, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list enquiries")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Enquiry
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan enquiry")
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list enquiries iterate")
}

func (s *SQLiteStore) CountEnquiries(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enquiries WHERE created_at >= ?`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count enquiries")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAssessment(row scannable) (*model.Assessment, error) {
	var a model.Assessment
	var kind, input, result string
	if err := row.Scan(&a.ID, &kind, &a.ClientRef, &input, &result, &a.Summary, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = model.AssessmentKind(kind)
	a.Input = []byte(input)
	a.Result = []byte(result)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

func scanEnquiry(row scannable) (*model.Enquiry, error) {
	var e model.Enquiry
	var typ string
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Company, &e.Phone, &typ, &e.Message, &e.SalesforceLeadID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.EnquiryType = model.EnquiryType(typ)
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

// prepareEnquiry assigns an ID and timestamp to a new enquiry.
func prepareEnquiry(e *model.Enquiry) error {
	if e == nil {
		return eris.New("store: nil enquiry")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return nil
}
