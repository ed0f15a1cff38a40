package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/grading"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

// GradeRepository persists student quarterly records by composite key.
type GradeRepository interface {
	Get(ctx context.Context, key models.RecordKey) (*models.StudentQuarterlyRecord, error)
	ListByScope(ctx context.Context, key models.SettingsKey) ([]models.StudentQuarterlyRecord, error)
	ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.StudentQuarterlyRecord, error)
	Put(ctx context.Context, record *models.StudentQuarterlyRecord) error
	PutMany(ctx context.Context, records []*models.StudentQuarterlyRecord) error
}

type settingsRepository interface {
	FindByScope(ctx context.Context, key models.SettingsKey) (*models.SubjectQuarterSettings, error)
	ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.SubjectQuarterSettings, error)
	Upsert(ctx context.Context, settings *models.SubjectQuarterSettings) error
}

type rosterReader interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.Student, error)
}

// Score components addressed by score edits.
const (
	ComponentWrittenWorks        = "ww"
	ComponentPerformanceTasks    = "pt"
	ComponentQuarterlyAssessment = "qa"
)

// Bulk import modes.
const (
	BulkModeAtomic         = "atomic"
	BulkModePartialOnError = "partialOnError"
)

// WarningWeightsUnbalanced is attached when the component weights do not total 100%.
const WarningWeightsUnbalanced = "component weights do not add up to 100%"

// UpdateSettingsRequest edits max scores and weights for a scope. Nil fields are left
// unchanged; max score slots are replaced as a whole when present. Weights must be
// above zero because a stored zero weight reads as unset.
type UpdateSettingsRequest struct {
	models.SettingsKey
	WrittenWorksMax        []*int   `json:"written_works_max" validate:"omitempty,max=10,dive,omitnil,gt=0"`
	PerformanceTasksMax    []*int   `json:"performance_tasks_max" validate:"omitempty,max=10,dive,omitnil,gt=0"`
	QuarterlyAssessmentMax *int     `json:"quarterly_assessment_max" validate:"omitnil,gte=0"`
	WWPercentage           *float64 `json:"ww_percentage" validate:"omitnil,gt=0,lte=1"`
	PTPercentage           *float64 `json:"pt_percentage" validate:"omitnil,gt=0,lte=1"`
	QAPercentage           *float64 `json:"qa_percentage" validate:"omitnil,gt=0,lte=1"`
}

// SettingsResult carries settings with the derived weight check.
type SettingsResult struct {
	Settings    *models.SubjectQuarterSettings `json:"settings"`
	WeightTotal float64                        `json:"weight_total"`
	Warnings    []string                       `json:"warnings,omitempty"`
}

// ScoreRequest sets or clears one score cell.
type ScoreRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Quarter   int    `json:"quarter" validate:"required,min=1,max=4"`
	BatchID   string `json:"batch_id" validate:"required"`
	Component string `json:"component" validate:"required,oneof=ww pt qa"`
	Index     int    `json:"index" validate:"gte=0,lt=10"`
	Score     *int   `json:"score" validate:"omitnil,gte=0"`
}

// Key returns the record key addressed by the request.
func (r ScoreRequest) Key() models.RecordKey {
	return models.RecordKey{StudentID: r.StudentID, Subject: r.Subject, Quarter: r.Quarter, BatchID: r.BatchID}
}

// BulkScoreItem is one pasted cell.
type BulkScoreItem struct {
	StudentID string `json:"student_id" validate:"required"`
	Component string `json:"component" validate:"required,oneof=ww pt qa"`
	Index     int    `json:"index" validate:"gte=0,lt=10"`
	Score     *int   `json:"score" validate:"omitnil,gte=0"`
}

// BulkScoresRequest imports many cells into one scope.
type BulkScoresRequest struct {
	models.SettingsKey
	Mode  string          `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Items []BulkScoreItem `json:"items" validate:"required,min=1,dive"`
}

// BulkScoreFailure describes a rejected cell.
type BulkScoreFailure struct {
	StudentID string `json:"student_id"`
	Component string `json:"component"`
	Index     int    `json:"index"`
	Reason    string `json:"reason"`
}

// BulkScoresResult summarises a bulk import.
type BulkScoresResult struct {
	SuccessCount int                `json:"success_count"`
	Failures     []BulkScoreFailure `json:"failures,omitempty"`
}

// ClassRecordService manages settings and scores for a subject+quarter+batch and
// computes the class record grid.
type ClassRecordService struct {
	settings  settingsRepository
	grades    GradeRepository
	students  rosterReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	warmer    *SummaryWarmer
	now       func() time.Time
}

// NewClassRecordService constructs ClassRecordService.
func NewClassRecordService(settings settingsRepository, grades GradeRepository, students rosterReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ClassRecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassRecordService{
		settings:  settings,
		grades:    grades,
		students:  students,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// SetSummaryWarmer enables background summary rebuilds after writes.
func (s *ClassRecordService) SetSummaryWarmer(w *SummaryWarmer) {
	s.warmer = w
}

func classRecordCacheKey(key models.SettingsKey) string {
	return "class-records:" + key.String()
}

// invalidateScope drops the cached grid of the scope and every summary of its batch.
func (s *ClassRecordService) invalidateScope(ctx context.Context, key models.SettingsKey) {
	warm := s.cache.Enabled()
	if warm {
		s.warmer.Touch(key.BatchID)
	}
	s.cache.Invalidate(ctx, classRecordCacheKey(key), summaryCachePattern(key.BatchID))
	if warm {
		s.warmer.Schedule(key.BatchID, key.Quarter)
	}
}

// defaultSettings seeds settings for a scope from the subject heuristics.
func defaultSettings(key models.SettingsKey) *models.SubjectQuarterSettings {
	weights := grading.SubjectWeightDefaults(key.Subject)
	return &models.SubjectQuarterSettings{
		Subject:             key.Subject,
		Quarter:             key.Quarter,
		BatchID:             key.BatchID,
		WrittenWorksMax:     models.NewScoreSlots(models.WrittenWorkSlots),
		PerformanceTasksMax: models.NewScoreSlots(models.PerformanceTaskSlots),
		WWPercentage:        weights.WrittenWorks,
		PTPercentage:        weights.PerformanceTasks,
		QAPercentage:        weights.QuarterlyAssessment,
	}
}

func validationError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
}

// Settings returns the settings of a scope, creating them with subject defaults on
// first access.
func (s *ClassRecordService) Settings(ctx context.Context, key models.SettingsKey) (*SettingsResult, error) {
	if err := s.validator.Struct(key); err != nil {
		return nil, validationError(err)
	}
	settings, err := s.loadSettings(ctx, key)
	if err != nil {
		return nil, err
	}
	return settingsResult(settings), nil
}

func (s *ClassRecordService) loadSettings(ctx context.Context, key models.SettingsKey) (*models.SubjectQuarterSettings, error) {
	settings, err := s.settings.FindByScope(ctx, key)
	if err == nil {
		settings.WrittenWorksMax = settings.WrittenWorksMax.Normalize(models.WrittenWorkSlots)
		settings.PerformanceTasksMax = settings.PerformanceTasksMax.Normalize(models.PerformanceTaskSlots)
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	settings = defaultSettings(key)
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create settings")
	}
	s.logger.Info("settings created with subject defaults",
		zap.String("scope", key.String()),
		zap.Float64("ww", settings.WWPercentage),
		zap.Float64("pt", settings.PTPercentage),
		zap.Float64("qa", settings.QAPercentage))
	return settings, nil
}

func settingsResult(settings *models.SubjectQuarterSettings) *SettingsResult {
	weights := grading.SettingsWeights(settings)
	result := &SettingsResult{Settings: settings, WeightTotal: weights.Sum()}
	if !weights.Balanced() {
		result.Warnings = []string{WarningWeightsUnbalanced}
	}
	return result
}

// UpdateSettings applies max score and weight edits. Unbalanced weights are saved
// and reported as a warning.
func (s *ClassRecordService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*SettingsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	settings, err := s.loadSettings(ctx, req.SettingsKey)
	if err != nil {
		return nil, err
	}
	if req.WrittenWorksMax != nil {
		settings.WrittenWorksMax = models.ScoreSlots(req.WrittenWorksMax).Normalize(models.WrittenWorkSlots)
	}
	if req.PerformanceTasksMax != nil {
		settings.PerformanceTasksMax = models.ScoreSlots(req.PerformanceTasksMax).Normalize(models.PerformanceTaskSlots)
	}
	if req.QuarterlyAssessmentMax != nil {
		settings.QuarterlyAssessmentMax = req.QuarterlyAssessmentMax
		if *req.QuarterlyAssessmentMax == 0 {
			settings.QuarterlyAssessmentMax = nil
		}
	}
	if req.WWPercentage != nil {
		settings.WWPercentage = *req.WWPercentage
	}
	if req.PTPercentage != nil {
		settings.PTPercentage = *req.PTPercentage
	}
	if req.QAPercentage != nil {
		settings.QAPercentage = *req.QAPercentage
	}
	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	s.invalidateScope(ctx, req.SettingsKey)

	result := settingsResult(settings)
	if len(result.Warnings) > 0 {
		s.logger.Warn("settings saved with unbalanced weights",
			zap.String("scope", req.SettingsKey.String()),
			zap.Float64("weight_total", result.WeightTotal))
	}
	return result, nil
}

// checkScore enforces the entry-time invariant: a score needs a configured max at its
// position and may not exceed it. Clearing a cell is always allowed.
func checkScore(settings *models.SubjectQuarterSettings, component string, index int, score *int) error {
	if score == nil {
		return nil
	}
	if *score < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "score must not be negative")
	}
	var maxScore *int
	switch component {
	case ComponentWrittenWorks:
		maxScore = settings.WrittenWorksMax.At(index)
	case ComponentPerformanceTasks:
		maxScore = settings.PerformanceTasksMax.At(index)
	case ComponentQuarterlyAssessment:
		maxScore = settings.QuarterlyAssessmentMax
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown component %q", component))
	}
	label := itemLabel(component, index)
	if maxScore == nil {
		return appErrors.Clone(appErrors.ErrItemNotConfigured, fmt.Sprintf("%s has no max score", label))
	}
	if *score > *maxScore {
		return appErrors.Clone(appErrors.ErrScoreExceedsMax, fmt.Sprintf("%s score %d exceeds max %d", label, *score, *maxScore))
	}
	return nil
}

func itemLabel(component string, index int) string {
	if component == ComponentQuarterlyAssessment {
		return "QA"
	}
	return fmt.Sprintf("%s%d", strings.ToUpper(component), index+1)
}

// applyScore writes a score into the record's cell.
func applyScore(record *models.StudentQuarterlyRecord, component string, index int, score *int) {
	var value *int
	if score != nil {
		v := *score
		value = &v
	}
	switch component {
	case ComponentWrittenWorks:
		record.WrittenWorks = record.WrittenWorks.Normalize(models.WrittenWorkSlots)
		record.WrittenWorks[index] = value
	case ComponentPerformanceTasks:
		record.PerformanceTasks = record.PerformanceTasks.Normalize(models.PerformanceTaskSlots)
		record.PerformanceTasks[index] = value
	case ComponentQuarterlyAssessment:
		record.QuarterlyAssessment = value
	}
}

func (s *ClassRecordService) loadRecord(ctx context.Context, key models.RecordKey) (*models.StudentQuarterlyRecord, error) {
	record, err := s.grades.Get(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewStudentQuarterlyRecord(key), nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}

// computeRow runs the engine for one record.
func computeRow(record *models.StudentQuarterlyRecord, settings *models.SubjectQuarterSettings) models.ClassRecordRow {
	result := grading.CalculateInitialGrade(record, settings)
	grade := grading.TransmuteResult(result.InitialGrade)
	return models.ClassRecordRow{
		StudentID:      record.StudentID,
		Record:         record,
		Result:         result,
		QuarterlyGrade: grade,
		Remark:         grading.IntRemark(grade),
	}
}

// UpsertScore sets or clears a single score and returns the recomputed row.
func (s *ClassRecordService) UpsertScore(ctx context.Context, req ScoreRequest) (*models.ClassRecordRow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	key := req.Key()
	settings, err := s.loadSettings(ctx, key.Settings())
	if err != nil {
		return nil, err
	}
	if err := checkScore(settings, req.Component, req.Index, req.Score); err != nil {
		s.metrics.AddScoreWrites("single", "rejected", 1)
		return nil, err
	}
	record, err := s.loadRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	applyScore(record, req.Component, req.Index, req.Score)
	if err := s.grades.Put(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save score")
	}
	s.metrics.AddScoreWrites("single", "saved", 1)
	s.invalidateScope(ctx, key.Settings())

	row := computeRow(record, settings)
	return &row, nil
}

// BulkUpsert imports many cells into one scope. In atomic mode (the default) any
// rejected cell fails the whole import without writing; in partialOnError mode valid
// cells are saved and rejected ones reported.
func (s *ClassRecordService) BulkUpsert(ctx context.Context, req BulkScoresRequest) (*BulkScoresResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	mode := req.Mode
	if mode == "" {
		mode = BulkModeAtomic
	}
	settings, err := s.loadSettings(ctx, req.SettingsKey)
	if err != nil {
		return nil, err
	}

	existing, err := s.grades.ListByScope(ctx, req.SettingsKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load records")
	}
	records := make(map[string]*models.StudentQuarterlyRecord, len(existing))
	for i := range existing {
		records[existing[i].StudentID] = &existing[i]
	}

	result := &BulkScoresResult{}
	touched := make([]*models.StudentQuarterlyRecord, 0)
	seen := make(map[string]bool)
	for _, item := range req.Items {
		if err := checkScore(settings, item.Component, item.Index, item.Score); err != nil {
			result.Failures = append(result.Failures, BulkScoreFailure{
				StudentID: item.StudentID,
				Component: item.Component,
				Index:     item.Index,
				Reason:    appErrors.FromError(err).Message,
			})
			continue
		}
		record, ok := records[item.StudentID]
		if !ok {
			record = models.NewStudentQuarterlyRecord(models.RecordKey{
				StudentID: item.StudentID,
				Subject:   req.Subject,
				Quarter:   req.Quarter,
				BatchID:   req.BatchID,
			})
			records[item.StudentID] = record
		}
		applyScore(record, item.Component, item.Index, item.Score)
		if !seen[item.StudentID] {
			seen[item.StudentID] = true
			touched = append(touched, record)
		}
		result.SuccessCount++
	}

	if mode == BulkModeAtomic && len(result.Failures) > 0 {
		s.metrics.AddScoreWrites(mode, "rejected", len(req.Items))
		err := appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%d of %d scores rejected", len(result.Failures), len(req.Items)))
		s.logger.Info("bulk import rejected", zap.String("scope", req.SettingsKey.String()), zap.Int("failures", len(result.Failures)))
		return &BulkScoresResult{Failures: result.Failures}, err
	}

	if err := s.grades.PutMany(ctx, touched); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
	}
	s.metrics.AddScoreWrites(mode, "saved", result.SuccessCount)
	s.metrics.AddScoreWrites(mode, "rejected", len(result.Failures))
	s.invalidateScope(ctx, req.SettingsKey)
	return result, nil
}

// ClassRecord computes the grid for a scope: one row per rostered student, in roster
// order, with an empty record for students not yet graded.
func (s *ClassRecordService) ClassRecord(ctx context.Context, key models.SettingsKey) (*models.ClassRecord, error) {
	if err := s.validator.Struct(key); err != nil {
		return nil, validationError(err)
	}
	return cached(ctx, s.cache, classRecordCacheKey(key), func() (*models.ClassRecord, error) {
		return s.buildClassRecord(ctx, key)
	})
}

func (s *ClassRecordService) buildClassRecord(ctx context.Context, key models.SettingsKey) (*models.ClassRecord, error) {
	settings, err := s.loadSettings(ctx, key)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListByBatch(ctx, key.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	records, err := s.grades.ListByScope(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load records")
	}
	byStudent := make(map[string]*models.StudentQuarterlyRecord, len(records))
	for i := range records {
		byStudent[records[i].StudentID] = &records[i]
	}

	sr := settingsResult(settings)
	grid := &models.ClassRecord{
		Settings:    *settings,
		WeightTotal: sr.WeightTotal,
		Warnings:    sr.Warnings,
		Rows:        make([]models.ClassRecordRow, 0, len(students)),
		GeneratedAt: s.now().UTC(),
	}
	for _, student := range students {
		record, ok := byStudent[student.ID]
		if !ok {
			record = models.NewStudentQuarterlyRecord(models.RecordKey{StudentID: student.ID, Subject: key.Subject, Quarter: key.Quarter, BatchID: key.BatchID})
		}
		row := computeRow(record, settings)
		row.StudentName = student.DisplayName()
		row.Sex = student.Sex
		grid.Rows = append(grid.Rows, row)
	}
	s.metrics.AddGradesComputed("class_record", len(grid.Rows))
	return grid, nil
}
