package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/grading"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

// MAPEHSubject is the composite subject label used in summaries.
const MAPEHSubject = "MAPEH"

const quarters = 4

type batchReader interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// SummaryService builds per-student quarterly and end-of-year summaries across the
// subjects of a batch.
type SummaryService struct {
	batches  batchReader
	students rosterReader
	settings settingsRepository
	grades   GradeRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSummaryService constructs SummaryService.
func NewSummaryService(batches batchReader, students rosterReader, settings settingsRepository, grades GradeRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		batches:  batches,
		students: students,
		settings: settings,
		grades:   grades,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func summaryCachePattern(batchID string) string {
	return "summaries:" + batchID + ":*"
}

func quarterlySummaryCacheKey(batchID string, quarter int) string {
	return "summaries:" + batchID + ":quarterly:" + strconv.Itoa(quarter)
}

func finalSummaryCacheKey(batchID string) string {
	return "summaries:" + batchID + ":final"
}

// gradebook indexes a batch's settings and records for grade lookups.
type gradebook struct {
	settings map[string]*models.SubjectQuarterSettings
	records  map[string]*models.StudentQuarterlyRecord
}

func scopeIndex(subject string, quarter int) string {
	return subject + "|" + strconv.Itoa(quarter)
}

func newGradebook(settings []models.SubjectQuarterSettings, records []models.StudentQuarterlyRecord) *gradebook {
	gb := &gradebook{
		settings: make(map[string]*models.SubjectQuarterSettings, len(settings)),
		records:  make(map[string]*models.StudentQuarterlyRecord, len(records)),
	}
	for i := range settings {
		gb.settings[scopeIndex(settings[i].Subject, settings[i].Quarter)] = &settings[i]
	}
	for i := range records {
		gb.records[records[i].StudentID+"|"+scopeIndex(records[i].Subject, records[i].Quarter)] = &records[i]
	}
	return gb
}

// grade is the transmuted quarterly grade, nil when the student has no grades or the
// subject was never set up for the quarter.
func (gb *gradebook) grade(studentID, subject string, quarter int) *int {
	settings, ok := gb.settings[scopeIndex(subject, quarter)]
	if !ok {
		return nil
	}
	record, ok := gb.records[studentID+"|"+scopeIndex(subject, quarter)]
	if !ok {
		return nil
	}
	return grading.QuarterlyGrade(record, settings)
}

// subjectGroups splits subjects into standalone ones and the MAPEH components present,
// preserving order. A MAPEH entry is emitted where the first component appears.
type subjectGroup struct {
	name       string
	components []string
}

func groupSubjects(subjects []string) []subjectGroup {
	groups := make([]subjectGroup, 0, len(subjects))
	mapehAt := -1
	for _, subject := range subjects {
		if isMAPEHComponent(subject) {
			if mapehAt < 0 {
				mapehAt = len(groups)
				groups = append(groups, subjectGroup{name: MAPEHSubject})
			}
			groups[mapehAt].components = append(groups[mapehAt].components, subject)
			continue
		}
		groups = append(groups, subjectGroup{name: subject})
	}
	if mapehAt >= 0 {
		filtered := groups[:0]
		for i, g := range groups {
			if i != mapehAt && strings.EqualFold(g.name, MAPEHSubject) && len(g.components) == 0 {
				continue
			}
			filtered = append(filtered, g)
		}
		groups = filtered
	}
	return groups
}

func isMAPEHComponent(subject string) bool {
	for _, c := range grading.MAPEHComponents {
		if strings.EqualFold(strings.TrimSpace(subject), c) {
			return true
		}
	}
	return false
}

// quarterGrade resolves a group's grade for one quarter. For MAPEH it also returns the
// component grades.
func (gb *gradebook) quarterGrade(studentID string, group subjectGroup, quarter int) (*int, map[string]*int) {
	if len(group.components) == 0 {
		return gb.grade(studentID, group.name, quarter), nil
	}
	components := make(map[string]*int, len(group.components))
	values := make([]*int, 0, len(group.components))
	for _, c := range group.components {
		g := gb.grade(studentID, c, quarter)
		components[c] = g
		values = append(values, g)
	}
	return grading.MAPEHComposite(values...), components
}

// batchSubjects returns the subjects registered to the batch, falling back to the
// subjects that have settings.
func (s *SummaryService) batchSubjects(ctx context.Context, batchID string, settings []models.SubjectQuarterSettings) ([]string, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if len(batch.Subjects) > 0 {
		return batch.Subjects, nil
	}
	set := make(map[string]struct{})
	subjects := make([]string, 0)
	for _, st := range settings {
		if _, ok := set[st.Subject]; ok {
			continue
		}
		set[st.Subject] = struct{}{}
		subjects = append(subjects, st.Subject)
	}
	sort.Strings(subjects)
	return subjects, nil
}

func (s *SummaryService) load(ctx context.Context, batchID string, quarter int) ([]string, []models.Student, *gradebook, error) {
	settings, err := s.settings.ListByBatch(ctx, batchID, quarter)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	subjects, err := s.batchSubjects(ctx, batchID, settings)
	if err != nil {
		return nil, nil, nil, err
	}
	students, err := s.students.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	records, err := s.grades.ListByBatch(ctx, batchID, quarter)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load records")
	}
	return subjects, students, newGradebook(settings, records), nil
}

// Quarterly summarises one quarter: each subject's transmuted grade with MAPEH
// collapsed to its composite, then the average, honor status and remark.
func (s *SummaryService) Quarterly(ctx context.Context, batchID string, quarter int) (*models.QuarterlySummary, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batchId is required")
	}
	if quarter < 1 || quarter > quarters {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quarter must be between 1 and 4")
	}
	return cached(ctx, s.cache, quarterlySummaryCacheKey(batchID, quarter), func() (*models.QuarterlySummary, error) {
		return s.buildQuarterly(ctx, batchID, quarter)
	})
}

func (s *SummaryService) buildQuarterly(ctx context.Context, batchID string, quarter int) (*models.QuarterlySummary, error) {
	subjects, students, gb, err := s.load(ctx, batchID, quarter)
	if err != nil {
		return nil, err
	}
	groups := groupSubjects(subjects)
	summary := &models.QuarterlySummary{
		BatchID:     batchID,
		Quarter:     quarter,
		Rows:        make([]models.QuarterlySummaryRow, 0, len(students)),
		GeneratedAt: s.now().UTC(),
	}
	for _, student := range students {
		row := models.QuarterlySummaryRow{
			StudentID:   student.ID,
			StudentName: student.DisplayName(),
			Subjects:    make([]models.SubjectGrade, 0, len(groups)),
		}
		grades := make([]*int, 0, len(groups))
		for _, group := range groups {
			grade, components := gb.quarterGrade(student.ID, group, quarter)
			row.Subjects = append(row.Subjects, models.SubjectGrade{
				Subject:    group.name,
				Grade:      grade,
				Remark:     grading.IntRemark(grade),
				Components: components,
			})
			grades = append(grades, grade)
		}
		row.Average = grading.Mean(grades...)
		row.HonorStatus = grading.HonorStatus(row.Average)
		row.Remark = grading.Remark(row.Average)
		summary.Rows = append(summary.Rows, row)
	}
	s.metrics.AddGradesComputed("quarterly_summary", len(students)*len(subjects))
	return summary, nil
}

// Final summarises the school year: per-subject final grades as the rounded mean of the
// quarters recorded, the general average over subjects, honors, remark and promotion
// status. A student is INCOMPLETE while any subject lacks a final grade, PROMOTED when
// every final grade passes and RETAINED otherwise.
func (s *SummaryService) Final(ctx context.Context, batchID string) (*models.FinalSummary, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batchId is required")
	}
	return cached(ctx, s.cache, finalSummaryCacheKey(batchID), func() (*models.FinalSummary, error) {
		return s.buildFinal(ctx, batchID)
	})
}

func (s *SummaryService) buildFinal(ctx context.Context, batchID string) (*models.FinalSummary, error) {
	subjects, students, gb, err := s.load(ctx, batchID, 0)
	if err != nil {
		return nil, err
	}
	groups := groupSubjects(subjects)
	summary := &models.FinalSummary{
		BatchID:     batchID,
		Rows:        make([]models.FinalSummaryRow, 0, len(students)),
		GeneratedAt: s.now().UTC(),
	}
	for _, student := range students {
		row := models.FinalSummaryRow{
			StudentID:   student.ID,
			StudentName: student.DisplayName(),
			Subjects:    make([]models.FinalSubjectGrade, 0, len(groups)),
		}
		finals := make([]*int, 0, len(groups))
		for _, group := range groups {
			fg := models.FinalSubjectGrade{Subject: group.name}
			for q := 1; q <= quarters; q++ {
				fg.Quarters[q-1], _ = gb.quarterGrade(student.ID, group, q)
			}
			fg.Final = grading.FinalGrade(fg.Quarters[:]...)
			fg.Remark = grading.IntRemark(fg.Final)
			row.Subjects = append(row.Subjects, fg)
			finals = append(finals, fg.Final)
		}
		row.GeneralAverage = grading.Mean(finals...)
		row.HonorStatus = grading.HonorStatus(row.GeneralAverage)
		row.Remark = grading.Remark(row.GeneralAverage)
		row.PromotionStatus = promotionStatus(finals)
		summary.Rows = append(summary.Rows, row)
	}
	s.metrics.AddGradesComputed("final_summary", len(students)*len(subjects)*quarters)
	return summary, nil
}

func promotionStatus(finals []*int) models.PromotionStatus {
	if len(finals) == 0 {
		return models.PromotionStatusIncomplete
	}
	status := models.PromotionStatusPromoted
	for _, f := range finals {
		if f == nil {
			return models.PromotionStatusIncomplete
		}
		if *f < grading.PassingGrade {
			status = models.PromotionStatusRetained
		}
	}
	return status
}
