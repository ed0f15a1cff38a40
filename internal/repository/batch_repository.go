package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

// BatchRepository reads class sections and their subject lists.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository creates a new batch repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByID returns the batch with its ordered subjects, or sql.ErrNoRows.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, `SELECT id, name, grade_level, school_year, created_at FROM batches WHERE id = $1`, id); err != nil {
		return nil, err
	}
	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, `SELECT subject FROM batch_subjects WHERE batch_id = $1 ORDER BY position, subject`, id); err != nil {
		return nil, fmt.Errorf("list batch subjects: %w", err)
	}
	batch.Subjects = subjects
	return &batch, nil
}
