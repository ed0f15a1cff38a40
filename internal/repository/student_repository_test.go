package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "batch_id", "lrn", "first_name", "middle_name", "last_name", "sex", "created_at", "updated_at"}

func TestStudentRepositoryListByBatch(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s1", "b1", "1001", "Juan", "Santos", "Dela Cruz", "M", now, now).
		AddRow("s2", "b1", "1002", "Maria", "", "Reyes", "F", now, now)
	mock.ExpectQuery("SELECT (.+) FROM students WHERE batch_id = \\$1").
		WithArgs("b1").
		WillReturnRows(rows)

	students, err := repo.ListByBatch(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "DELA CRUZ, Juan S.", students[0].DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM students WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery("SELECT id, name, grade_level, school_year, created_at FROM batches").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "grade_level", "school_year", "created_at"}).
			AddRow("b1", "Rizal", "Grade 7", "2024-2025", time.Now()))
	mock.ExpectQuery("SELECT subject FROM batch_subjects").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"subject"}).AddRow("English").AddRow("Music"))

	batch, err := repo.FindByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "Music"}, batch.Subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}
