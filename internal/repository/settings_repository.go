package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

const settingsColumns = `id, subject, quarter, batch_id, written_works_max, performance_tasks_max,
        quarterly_assessment_max, ww_percentage, pt_percentage, qa_percentage, created_at, updated_at`

// SettingsRepository persists subject+quarter+batch settings.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// FindByScope returns the settings for a scope or sql.ErrNoRows.
func (r *SettingsRepository) FindByScope(ctx context.Context, key models.SettingsKey) (*models.SubjectQuarterSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM subject_quarter_settings
        WHERE subject = $1 AND quarter = $2 AND batch_id = $3`
	var settings models.SubjectQuarterSettings
	if err := r.db.GetContext(ctx, &settings, query, key.Subject, key.Quarter, key.BatchID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ListByBatch returns every settings row of a batch, optionally for one quarter.
func (r *SettingsRepository) ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.SubjectQuarterSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM subject_quarter_settings WHERE batch_id = $1`
	args := []interface{}{batchID}
	if quarter > 0 {
		query += " AND quarter = $2"
		args = append(args, quarter)
	}
	query += " ORDER BY subject, quarter"
	var settings []models.SubjectQuarterSettings
	if err := r.db.SelectContext(ctx, &settings, query, args...); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Upsert inserts or replaces the settings for its scope.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.SubjectQuarterSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	const query = `INSERT INTO subject_quarter_settings (` + settingsColumns + `)
        VALUES (:id, :subject, :quarter, :batch_id, :written_works_max, :performance_tasks_max,
        :quarterly_assessment_max, :ww_percentage, :pt_percentage, :qa_percentage, :created_at, :updated_at)
        ON CONFLICT (subject, quarter, batch_id)
        DO UPDATE SET written_works_max = EXCLUDED.written_works_max, performance_tasks_max = EXCLUDED.performance_tasks_max,
        quarterly_assessment_max = EXCLUDED.quarterly_assessment_max, ww_percentage = EXCLUDED.ww_percentage,
        pt_percentage = EXCLUDED.pt_percentage, qa_percentage = EXCLUDED.qa_percentage, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
