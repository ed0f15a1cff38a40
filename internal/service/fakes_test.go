package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/class-record-api/internal/models"
)

type fakeSettingsRepo struct {
	rows    map[string]*models.SubjectQuarterSettings
	upserts int
}

func newFakeSettingsRepo(settings ...*models.SubjectQuarterSettings) *fakeSettingsRepo {
	repo := &fakeSettingsRepo{rows: map[string]*models.SubjectQuarterSettings{}}
	for _, s := range settings {
		repo.rows[s.Scope().String()] = s
	}
	return repo
}

func (f *fakeSettingsRepo) FindByScope(ctx context.Context, key models.SettingsKey) (*models.SubjectQuarterSettings, error) {
	s, ok := f.rows[key.String()]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSettingsRepo) ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.SubjectQuarterSettings, error) {
	var out []models.SubjectQuarterSettings
	for _, s := range f.rows {
		if s.BatchID == batchID && (quarter == 0 || s.Quarter == quarter) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.SubjectQuarterSettings) error {
	f.upserts++
	clone := *settings
	f.rows[settings.Scope().String()] = &clone
	return nil
}

type fakeGradeRepo struct {
	rows    map[string]*models.StudentQuarterlyRecord
	putErr  error
	putMany int
}

func newFakeGradeRepo(records ...*models.StudentQuarterlyRecord) *fakeGradeRepo {
	repo := &fakeGradeRepo{rows: map[string]*models.StudentQuarterlyRecord{}}
	for _, r := range records {
		repo.rows[r.Key().String()] = r
	}
	return repo
}

func (f *fakeGradeRepo) Get(ctx context.Context, key models.RecordKey) (*models.StudentQuarterlyRecord, error) {
	r, ok := f.rows[key.String()]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (f *fakeGradeRepo) ListByScope(ctx context.Context, key models.SettingsKey) ([]models.StudentQuarterlyRecord, error) {
	var out []models.StudentQuarterlyRecord
	for _, r := range f.rows {
		if r.Key().Settings() == key {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeGradeRepo) ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.StudentQuarterlyRecord, error) {
	var out []models.StudentQuarterlyRecord
	for _, r := range f.rows {
		if r.BatchID == batchID && (quarter == 0 || r.Quarter == quarter) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeGradeRepo) Put(ctx context.Context, record *models.StudentQuarterlyRecord) error {
	if f.putErr != nil {
		return f.putErr
	}
	clone := *record
	f.rows[record.Key().String()] = &clone
	return nil
}

func (f *fakeGradeRepo) PutMany(ctx context.Context, records []*models.StudentQuarterlyRecord) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putMany++
	for _, r := range records {
		if err := f.Put(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

type fakeRoster struct {
	students []models.Student
}

func (f fakeRoster) ListByBatch(ctx context.Context, batchID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		if s.BatchID == batchID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeBatches struct {
	batches map[string]*models.Batch
}

func (f fakeBatches) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

var errBoom = errors.New("boom")

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func roster() fakeRoster {
	return fakeRoster{students: []models.Student{
		{ID: "s1", BatchID: "b1", FirstName: "Juan", LastName: "Dela Cruz", Sex: "M"},
		{ID: "s2", BatchID: "b1", FirstName: "Maria", LastName: "Reyes", Sex: "F"},
	}}
}

// englishSettings configures three written works, two performance tasks and a
// quarterly assessment for English Q1.
func englishSettings() *models.SubjectQuarterSettings {
	return &models.SubjectQuarterSettings{
		ID:                     "st-en-1",
		Subject:                "English",
		Quarter:                1,
		BatchID:                "b1",
		WrittenWorksMax:        models.ScoreSlotsOf(models.WrittenWorkSlots, 20, 20, 10),
		PerformanceTasksMax:    models.ScoreSlotsOf(models.PerformanceTaskSlots, 50, 50),
		QuarterlyAssessmentMax: intPtr(50),
		WWPercentage:           0.30,
		PTPercentage:           0.50,
		QAPercentage:           0.20,
	}
}

func recordFor(studentID, subject string, quarter int, ww, pt []int, qa *int) *models.StudentQuarterlyRecord {
	r := models.NewStudentQuarterlyRecord(models.RecordKey{StudentID: studentID, Subject: subject, Quarter: quarter, BatchID: "b1"})
	r.WrittenWorks = models.ScoreSlotsOf(models.WrittenWorkSlots, ww...)
	r.PerformanceTasks = models.ScoreSlotsOf(models.PerformanceTaskSlots, pt...)
	r.QuarterlyAssessment = qa
	return r
}
