package models

import "time"

// SubjectGrade is a student's transmuted grade for one subject. Components is set
// for composite subjects such as MAPEH.
type SubjectGrade struct {
	Subject    string          `json:"subject"`
	Grade      *int            `json:"grade"`
	Remark     string          `json:"remark"`
	Components map[string]*int `json:"components,omitempty"`
}

// QuarterlySummaryRow summarises a student's quarter across subjects.
type QuarterlySummaryRow struct {
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name"`
	Subjects    []SubjectGrade `json:"subjects"`
	Average     *float64       `json:"average"`
	HonorStatus string         `json:"honor_status"`
	Remark      string         `json:"remark"`
}

// QuarterlySummary is the honor-roll style view for one batch and quarter.
type QuarterlySummary struct {
	BatchID     string                `json:"batch_id"`
	Quarter     int                   `json:"quarter"`
	Rows        []QuarterlySummaryRow `json:"rows"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// PromotionStatus classifies the end-of-year outcome.
type PromotionStatus string

const (
	PromotionStatusPromoted   PromotionStatus = "PROMOTED"
	PromotionStatusRetained   PromotionStatus = "RETAINED"
	PromotionStatusIncomplete PromotionStatus = "INCOMPLETE"
)

// FinalSubjectGrade carries per-quarter grades plus the final rating for a subject.
type FinalSubjectGrade struct {
	Subject  string  `json:"subject"`
	Quarters [4]*int `json:"quarters"`
	Final    *int    `json:"final"`
	Remark   string  `json:"remark"`
}

// FinalSummaryRow is a student's end-of-year standing.
type FinalSummaryRow struct {
	StudentID       string              `json:"student_id"`
	StudentName     string              `json:"student_name"`
	Subjects        []FinalSubjectGrade `json:"subjects"`
	GeneralAverage  *float64            `json:"general_average"`
	HonorStatus     string              `json:"honor_status"`
	Remark          string              `json:"remark"`
	PromotionStatus PromotionStatus     `json:"promotion_status"`
}

// FinalSummary aggregates end-of-year standings for a batch.
type FinalSummary struct {
	BatchID     string            `json:"batch_id"`
	Rows        []FinalSummaryRow `json:"rows"`
	GeneratedAt time.Time         `json:"generated_at"`
}
