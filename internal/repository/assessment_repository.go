package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/godilite/valuation-server/internal/repository/models"
)

// ErrNotFound is returned when no assessment matches the requested id.
var ErrNotFound = errors.New("assessment not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS assessments (
		id            TEXT PRIMARY KEY,
		supersedes_id TEXT NOT NULL DEFAULT '',
		root_id       TEXT NOT NULL,
		version       INTEGER NOT NULL,
		tier          TEXT NOT NULL,
		status        TEXT NOT NULL,
		overall_grade TEXT NOT NULL,
		mid_estimate  DOUBLE PRECISION NOT NULL,
		created_at    TEXT NOT NULL,
		document      TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_assessments_root_version ON assessments (root_id, version)`,
}

// createAttempts bounds retries when a concurrent resubmit takes the same
// chain version first.
const createAttempts = 5

const selectColumns = `id, supersedes_id, root_id, version, tier, status, overall_grade, mid_estimate, created_at, document`

// AssessmentRepository stores processed assessments. Rows are insert-only; a
// resubmission is a new row in the same version chain.
type AssessmentRepository struct {
	db     *sql.DB
	dollar bool
}

// NewAssessmentRepository wraps db. driver selects the placeholder style:
// "pgx" and "postgres" use $n, everything else uses ?.
func NewAssessmentRepository(db *sql.DB, driver string) *AssessmentRepository {
	return &AssessmentRepository{
		db:     db,
		dollar: driver == "pgx" || driver == "postgres",
	}
}

// Migrate creates the schema if it does not exist.
func (s *AssessmentRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate assessments: %w", err)
		}
	}
	return nil
}

// Create inserts rec and returns it with RootID and Version assigned. A
// record with SupersedesID joins the chain of the record it supersedes.
func (s *AssessmentRepository) Create(ctx context.Context, rec models.AssessmentRecord) (models.AssessmentRecord, error) {
	var (
		out models.AssessmentRecord
		err error
	)
	for attempt := 1; attempt <= createAttempts; attempt++ {
		out, err = s.create(ctx, rec)
		if err == nil || rec.SupersedesID == "" || !isUniqueViolation(err) {
			return out, err
		}
	}
	return models.AssessmentRecord{}, fmt.Errorf("assign chain version after %d attempts: %w", createAttempts, err)
}

func (s *AssessmentRepository) create(ctx context.Context, rec models.AssessmentRecord) (models.AssessmentRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.AssessmentRecord{}, fmt.Errorf("begin Create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec.RootID = rec.ID
	rec.Version = 1
	if rec.SupersedesID != "" {
		err := tx.QueryRowContext(ctx, s.rebind(`SELECT root_id FROM assessments WHERE id = ?`), rec.SupersedesID).Scan(&rec.RootID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.AssessmentRecord{}, fmt.Errorf("%w: %s", ErrNotFound, rec.SupersedesID)
		}
		if err != nil {
			return models.AssessmentRecord{}, fmt.Errorf("query chain root: %w", err)
		}

		var latest sql.NullInt64
		err = tx.QueryRowContext(ctx, s.rebind(`SELECT MAX(version) FROM assessments WHERE root_id = ?`), rec.RootID).Scan(&latest)
		if err != nil {
			return models.AssessmentRecord{}, fmt.Errorf("query chain version: %w", err)
		}
		rec.Version = int(latest.Int64) + 1
	}

	const insert = `
		INSERT INTO assessments (id, supersedes_id, root_id, version, tier, status, overall_grade, mid_estimate, created_at, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, s.rebind(insert),
		rec.ID, rec.SupersedesID, rec.RootID, rec.Version, rec.Tier, rec.Status,
		rec.OverallGrade, rec.MidEstimate, rec.CreatedAt.UTC().Format(time.RFC3339Nano), string(rec.Document))
	if err != nil {
		return models.AssessmentRecord{}, fmt.Errorf("insert assessment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.AssessmentRecord{}, fmt.Errorf("commit Create: %w", err)
	}
	return rec, nil
}

// GetByID fetches a single assessment.
func (s *AssessmentRepository) GetByID(ctx context.Context, id string) (models.AssessmentRecord, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+selectColumns+` FROM assessments WHERE id = ?`), id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AssessmentRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return models.AssessmentRecord{}, fmt.Errorf("query GetByID: %w", err)
	}
	return rec, nil
}

// ListVersions returns every record in the chain containing id, newest first.
func (s *AssessmentRepository) ListVersions(ctx context.Context, id string) ([]models.AssessmentRecord, error) {
	const query = `
		SELECT ` + selectColumns + `
		FROM assessments
		WHERE root_id = (SELECT root_id FROM assessments WHERE id = ?)
		ORDER BY version DESC
	`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), id)
	if err != nil {
		return nil, fmt.Errorf("query ListVersions: %w", err)
	}
	defer rows.Close()

	var results []models.AssessmentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ListVersions row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListVersions: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return results, nil
}

// isUniqueViolation reports whether err is a unique-constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (models.AssessmentRecord, error) {
	var (
		rec       models.AssessmentRecord
		createdAt string
		document  string
	)
	err := sc.Scan(&rec.ID, &rec.SupersedesID, &rec.RootID, &rec.Version, &rec.Tier, &rec.Status,
		&rec.OverallGrade, &rec.MidEstimate, &createdAt, &document)
	if err != nil {
		return models.AssessmentRecord{}, err
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.AssessmentRecord{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.Document = []byte(document)
	return rec, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres drivers.
func (s *AssessmentRepository) rebind(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
