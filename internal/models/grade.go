package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	// WrittenWorkSlots is the number of Written Works columns in a class record.
	WrittenWorkSlots = 10
	// PerformanceTaskSlots is the number of Performance Tasks columns in a class record.
	PerformanceTaskSlots = 10
)

// ScoreSlots is an ordered, fixed-width sequence of optional scores. A nil entry
// means the item is ungraded (for records) or unused (for max-score settings).
type ScoreSlots []*int

// NewScoreSlots returns n empty slots.
func NewScoreSlots(n int) ScoreSlots {
	return make(ScoreSlots, n)
}

// ScoreSlotsOf builds slots from the provided values, padding to n with nils.
func ScoreSlotsOf(n int, values ...int) ScoreSlots {
	slots := NewScoreSlots(n)
	for i, v := range values {
		if i >= n {
			break
		}
		v := v
		slots[i] = &v
	}
	return slots
}

// At returns the score at index i or nil when out of range.
func (s ScoreSlots) At(i int) *int {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Normalize pads or truncates the slots to exactly n entries.
func (s ScoreSlots) Normalize(n int) ScoreSlots {
	out := NewScoreSlots(n)
	copy(out, s)
	return out
}

// Value stores slots as a JSON array column.
func (s ScoreSlots) Value() (driver.Value, error) {
	if s == nil {
		s = ScoreSlots{}
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode score slots: %w", err)
	}
	return types.JSONText(payload).Value()
}

// Scan reads slots from a JSON array column.
func (s *ScoreSlots) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw types.JSONText
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan score slots: %w", err)
	}
	var slots ScoreSlots
	if err := raw.Unmarshal(&slots); err != nil {
		return fmt.Errorf("decode score slots: %w", err)
	}
	*s = slots
	return nil
}

// SubjectQuarterSettings configures max scores and component weights for a
// subject+quarter+batch scope.
type SubjectQuarterSettings struct {
	ID                     string     `db:"id" json:"id"`
	Subject                string     `db:"subject" json:"subject"`
	Quarter                int        `db:"quarter" json:"quarter"`
	BatchID                string     `db:"batch_id" json:"batch_id"`
	WrittenWorksMax        ScoreSlots `db:"written_works_max" json:"written_works_max"`
	PerformanceTasksMax    ScoreSlots `db:"performance_tasks_max" json:"performance_tasks_max"`
	QuarterlyAssessmentMax *int       `db:"quarterly_assessment_max" json:"quarterly_assessment_max"`
	WWPercentage           float64    `db:"ww_percentage" json:"ww_percentage"`
	PTPercentage           float64    `db:"pt_percentage" json:"pt_percentage"`
	QAPercentage           float64    `db:"qa_percentage" json:"qa_percentage"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Scope returns the settings key.
func (s SubjectQuarterSettings) Scope() SettingsKey {
	return SettingsKey{Subject: s.Subject, Quarter: s.Quarter, BatchID: s.BatchID}
}

// StudentQuarterlyRecord holds a student's raw scores for a subject+quarter+batch.
type StudentQuarterlyRecord struct {
	ID                  string     `db:"id" json:"id"`
	StudentID           string     `db:"student_id" json:"student_id"`
	Subject             string     `db:"subject" json:"subject"`
	Quarter             int        `db:"quarter" json:"quarter"`
	BatchID             string     `db:"batch_id" json:"batch_id"`
	WrittenWorks        ScoreSlots `db:"written_works" json:"written_works"`
	PerformanceTasks    ScoreSlots `db:"performance_tasks" json:"performance_tasks"`
	QuarterlyAssessment *int       `db:"quarterly_assessment" json:"quarterly_assessment"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Key returns the composite record key.
func (r StudentQuarterlyRecord) Key() RecordKey {
	return RecordKey{StudentID: r.StudentID, Subject: r.Subject, Quarter: r.Quarter, BatchID: r.BatchID}
}

// NewStudentQuarterlyRecord returns an empty (all ungraded) record for key.
func NewStudentQuarterlyRecord(key RecordKey) *StudentQuarterlyRecord {
	return &StudentQuarterlyRecord{
		StudentID:        key.StudentID,
		Subject:          key.Subject,
		Quarter:          key.Quarter,
		BatchID:          key.BatchID,
		WrittenWorks:     NewScoreSlots(WrittenWorkSlots),
		PerformanceTasks: NewScoreSlots(PerformanceTaskSlots),
	}
}

// SettingsKey identifies a SubjectQuarterSettings row.
type SettingsKey struct {
	Subject string `form:"subject" json:"subject" validate:"required"`
	Quarter int    `form:"quarter" json:"quarter" validate:"required,min=1,max=4"`
	BatchID string `form:"batchId" json:"batch_id" validate:"required"`
}

// String renders the key in subject-quarter-batch form.
func (k SettingsKey) String() string {
	return fmt.Sprintf("%s-%d-%s", k.Subject, k.Quarter, k.BatchID)
}

// RecordKey identifies a StudentQuarterlyRecord row.
type RecordKey struct {
	StudentID string `json:"student_id"`
	Subject   string `json:"subject"`
	Quarter   int    `json:"quarter"`
	BatchID   string `json:"batch_id"`
}

// String renders the key as studentId-subject-quarter-batchId.
func (k RecordKey) String() string {
	return fmt.Sprintf("%s-%s-%d-%s", k.StudentID, k.Subject, k.Quarter, k.BatchID)
}

// Settings returns the settings key the record belongs to.
func (k RecordKey) Settings() SettingsKey {
	return SettingsKey{Subject: k.Subject, Quarter: k.Quarter, BatchID: k.BatchID}
}

// GradeResult is the computed breakdown for a single record.
type GradeResult struct {
	WWTotal      int      `json:"ww_total"`
	WWPs         float64  `json:"ww_ps"`
	WWWs         float64  `json:"ww_ws"`
	PTTotal      int      `json:"pt_total"`
	PTPs         float64  `json:"pt_ps"`
	PTWs         float64  `json:"pt_ws"`
	QAPs         float64  `json:"qa_ps"`
	QAWs         float64  `json:"qa_ws"`
	InitialGrade *float64 `json:"initial_grade"`
}

// ClassRecordRow is a rendered class record line for one student.
type ClassRecordRow struct {
	StudentID      string                  `json:"student_id"`
	StudentName    string                  `json:"student_name"`
	Sex            string                  `json:"sex"`
	Record         *StudentQuarterlyRecord `json:"record"`
	Result         GradeResult             `json:"result"`
	QuarterlyGrade *int                    `json:"quarterly_grade"`
	Remark         string                  `json:"remark"`
}

// ClassRecord is the computed class record grid for a scope.
type ClassRecord struct {
	Settings    SubjectQuarterSettings `json:"settings"`
	WeightTotal float64                `json:"weight_total"`
	Warnings    []string               `json:"warnings,omitempty"`
	Rows        []ClassRecordRow       `json:"rows"`
	GeneratedAt time.Time              `json:"generated_at"`
}
