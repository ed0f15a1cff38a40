package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		grade_level TEXT NOT NULL DEFAULT '',
		school_year TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS batch_subjects (
		batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		subject TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (batch_id, subject)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		lrn TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL,
		middle_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL,
		sex TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subject_quarter_settings (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		quarter INT NOT NULL CHECK (quarter BETWEEN 1 AND 4),
		batch_id TEXT NOT NULL,
		written_works_max JSONB NOT NULL DEFAULT '[]',
		performance_tasks_max JSONB NOT NULL DEFAULT '[]',
		quarterly_assessment_max INT,
		ww_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		pt_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		qa_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (subject, quarter, batch_id)
	)`,
	`CREATE TABLE IF NOT EXISTS student_quarterly_records (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		quarter INT NOT NULL CHECK (quarter BETWEEN 1 AND 4),
		batch_id TEXT NOT NULL,
		written_works JSONB NOT NULL DEFAULT '[]',
		performance_tasks JSONB NOT NULL DEFAULT '[]',
		quarterly_assessment INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, subject, quarter, batch_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_scope ON student_quarterly_records (batch_id, subject, quarter)`,
}

// EnsureSchema creates the class record tables when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
