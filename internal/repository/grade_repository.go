package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

const recordColumns = `id, student_id, subject, quarter, batch_id, written_works, performance_tasks,
        quarterly_assessment, created_at, updated_at`

const upsertRecordQuery = `INSERT INTO student_quarterly_records (` + recordColumns + `)
        VALUES (:id, :student_id, :subject, :quarter, :batch_id, :written_works, :performance_tasks,
        :quarterly_assessment, :created_at, :updated_at)
        ON CONFLICT (student_id, subject, quarter, batch_id)
        DO UPDATE SET written_works = EXCLUDED.written_works, performance_tasks = EXCLUDED.performance_tasks,
        quarterly_assessment = EXCLUDED.quarterly_assessment, updated_at = EXCLUDED.updated_at`

// GradeRepository persists student quarterly records keyed by
// (student, subject, quarter, batch).
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Get returns the record for key or sql.ErrNoRows.
func (r *GradeRepository) Get(ctx context.Context, key models.RecordKey) (*models.StudentQuarterlyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM student_quarterly_records
        WHERE student_id = $1 AND subject = $2 AND quarter = $3 AND batch_id = $4`
	var record models.StudentQuarterlyRecord
	if err := r.db.GetContext(ctx, &record, query, key.StudentID, key.Subject, key.Quarter, key.BatchID); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByScope returns every record of a subject+quarter+batch.
func (r *GradeRepository) ListByScope(ctx context.Context, key models.SettingsKey) ([]models.StudentQuarterlyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM student_quarterly_records
        WHERE subject = $1 AND quarter = $2 AND batch_id = $3`
	var records []models.StudentQuarterlyRecord
	if err := r.db.SelectContext(ctx, &records, query, key.Subject, key.Quarter, key.BatchID); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// ListByBatch returns every record of a batch, optionally for one quarter.
func (r *GradeRepository) ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.StudentQuarterlyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM student_quarterly_records WHERE batch_id = $1`
	args := []interface{}{batchID}
	if quarter > 0 {
		query += " AND quarter = $2"
		args = append(args, quarter)
	}
	var records []models.StudentQuarterlyRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list batch records: %w", err)
	}
	return records, nil
}

func stampRecord(record *models.StudentQuarterlyRecord, now time.Time) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

// Put inserts or replaces a record.
func (r *GradeRepository) Put(ctx context.Context, record *models.StudentQuarterlyRecord) error {
	stampRecord(record, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, upsertRecordQuery, record); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// PutMany inserts or replaces records in a single transaction.
func (r *GradeRepository) PutMany(ctx context.Context, records []*models.StudentQuarterlyRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin records tx: %w", err)
	}
	now := time.Now().UTC()
	for _, record := range records {
		stampRecord(record, now)
		if _, err := tx.NamedExecContext(ctx, upsertRecordQuery, record); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert record %s: %w", record.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}
