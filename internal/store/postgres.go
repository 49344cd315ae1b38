package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/resilience"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
	// ConnectRetries is the number of extra connection attempts made when
	// the first one fails with a transient error.
	ConnectRetries int
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_assessment": `INSERT INTO assessments (id, kind, client_ref, input, result, summary, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_assessment":    `SELECT id, kind, client_ref, input, result, summary, created_at FROM assessments WHERE id = $1`,
	"insert_enquiry":    `INSERT INTO enquiries (id, name, email, company, phone, enquiry_type, message, salesforce_lead_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"set_enquiry_lead":  `UPDATE enquiries SET salesforce_lead_id = $1 WHERE id = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool. Transient
// connection failures are retried with backoff.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	retries := 0
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
		retries = max(poolCfg.ConnectRetries, 0)
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = min(minConns, maxConns)
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	backoff := resilience.DefaultBackoff()
	backoff.Attempts = retries + 1

	pool, err := resilience.RetryValue(ctx, backoff, "postgres connect", func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}

	zap.L().Debug("postgres: connected",
		zap.Int32("max_conns", maxConns),
		zap.Int32("min_conns", pgxCfg.MinConns),
	)
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	client_ref TEXT NOT NULL DEFAULT '',
	input      JSONB NOT NULL,
	result     JSONB NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
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
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assessments_kind_created ON assessments(kind, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
CREATE INDEX IF NOT EXISTS idx_enquiries_created_at ON enquiries(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	if err := checkAssessment(a); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assessments (id, kind, client_ref, input, result, summary, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, string(a.Kind), a.ClientRef, []byte(a.Input), []byte(a.Result), a.Summary, a.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert assessment %s", a.ID)
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, client_ref, input, result, summary, created_at FROM assessments WHERE id = $1`, id,
	)
	a, err := scanPgAssessment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("assessment", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get assessment %s", id)
	}
	return a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	var where []string
	var args []any
	argIdx := 1

	if filter.Kind != "" {
		where = append(where, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, string(filter.Kind))
		argIdx++
	}
	if !filter.Since.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}

	query := `SELECT id, kind, client_ref, input, result, summary, created_at FROM assessments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, listLimit(filter.Limit), max(filter.Offset, 0))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		a, err := scanPgAssessment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list assessments iterate")
}

func (s *PostgresStore) CountAssessments(ctx context.Context, since time.Time) (map[model.AssessmentKind]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kind, COUNT(*) FROM assessments WHERE created_at >= $1 GROUP BY kind`, since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count assessments")
	}
	defer rows.Close()

	counts := make(map[model.AssessmentKind]int)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment count")
		}
		counts[model.AssessmentKind(kind)] = int(n)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count assessments iterate")
}

func (s *PostgresStore) CreateEnquiry(ctx context.Context, e *model.Enquiry) error {
	if err := prepareEnquiry(e); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO enquiries (id, name, email, company, phone, enquiry_type, message, salesforce_lead_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Name, e.Email, e.Company, e.Phone, string(e.EnquiryType), e.Message, e.SalesforceLeadID, e.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert enquiry %s", e.ID)
}

func (s *PostgresStore) SetEnquiryLead(ctx context.Context, enquiryID, leadID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE enquiries SET salesforce_lead_id = $1 WHERE id = $2`, leadID, enquiryID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set enquiry lead %s", enquiryID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("enquiry", enquiryID)
	}
	return nil
}

func (s *PostgresStore) ListEnquiries(ctx context.Context, limit int) ([]model.Enquiry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, company, phone, enquiry_type, message, salesforce_lead_id, created_at
		FROM enquiries ORDER BY created_at DESC, id LIMIT $1`, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list enquiries")
	}
	defer rows.Close()

	var out []model.Enquiry
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan enquiry")
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list enquiries iterate")
}

func (s *PostgresStore) CountEnquiries(ctx context.Context, since time.Time) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enquiries WHERE created_at >= $1`, since,
	).Scan(&n)
	return int(n), eris.Wrap(err, "postgres: count enquiries")
}

func scanPgAssessment(row scannable) (*model.Assessment, error) {
	var a model.Assessment
	var kind string
	var input, result []byte
	if err := row.Scan(&a.ID, &kind, &a.ClientRef, &input, &result, &a.Summary, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = model.AssessmentKind(kind)
	a.Input = input
	a.Result = result
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
