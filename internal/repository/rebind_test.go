package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`

	assert.Equal(t, q, NewAssessmentRepository(nil, "sqlite3").rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2`, NewAssessmentRepository(nil, "pgx").rebind(q))
}

func TestIsUniqueViolation(t *testing.T) {
	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	primary := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}

	assert.True(t, isUniqueViolation(fmt.Errorf("insert assessment: %w", unique)))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert assessment: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(primary))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("database is locked")))
	assert.False(t, isUniqueViolation(nil))
}
