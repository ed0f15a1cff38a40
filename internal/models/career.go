package models

// PerformanceRating is an RPMS/IPCRF rating for a single objective.
type PerformanceRating string

const (
	RatingOutstanding      PerformanceRating = "O"
	RatingVerySatisfactory PerformanceRating = "VS"
	RatingSatisfactory     PerformanceRating = "S"
	RatingUnset            PerformanceRating = ""
)

// IndicatorType tags an objective as classroom-observable or not.
type IndicatorType string

const (
	IndicatorCOI  IndicatorType = "COI"
	IndicatorNCOI IndicatorType = "NCOI"
)

// ObjectiveSlots is the fixed number of objectives per rating year.
const ObjectiveSlots = 15

// MaxRatingYears is the number of school years considered for promotion.
const MaxRatingYears = 3

// ObjectiveRating is one cell of the career progression grid.
type ObjectiveRating struct {
	IndicatorCode string            `json:"indicator_code"`
	Type          IndicatorType     `json:"type" validate:"omitempty,oneof=COI NCOI"`
	Rating        PerformanceRating `json:"rating" validate:"omitempty,oneof=O VS S"`
}

// RatingYear holds a school year's objective ratings, ordered oldest first in a grid.
type RatingYear struct {
	SchoolYear string            `json:"school_year"`
	Objectives []ObjectiveRating `json:"objectives" validate:"max=15,dive"`
}

// IndicatorTally counts deduplicated ratings at VS and O for each indicator type.
type IndicatorTally struct {
	COIVerySatisfactory  int `json:"coi_vs"`
	COIOutstanding       int `json:"coi_o"`
	NCOIVerySatisfactory int `json:"ncoi_vs"`
	NCOIOutstanding      int `json:"ncoi_o"`
}

// Threshold is a parsed {vs, o} requirement for one indicator type.
type Threshold struct {
	VerySatisfactory int `json:"vs"`
	Outstanding      int `json:"o"`
}

// Shortfall is the remaining count needed to meet a Threshold.
type Shortfall struct {
	NeededVerySatisfactory int `json:"needed_vs"`
	NeededOutstanding      int `json:"needed_o"`
}

// Position is a teaching position in the career line.
type Position struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	SalaryGrade int    `json:"salary_grade"`
	Requirement string `json:"requirement"`
}

// PositionAssessment describes how a ratings tally measures up to one position.
type PositionAssessment struct {
	Position      Position  `json:"position"`
	COI           Threshold `json:"coi"`
	NCOI          Threshold `json:"ncoi"`
	COIQualified  bool      `json:"coi_qualified"`
	NCOIQualified bool      `json:"ncoi_qualified"`
	Qualified     bool      `json:"qualified"`
	COIShortfall  Shortfall `json:"coi_shortfall"`
	NCOIShortfall Shortfall `json:"ncoi_shortfall"`
}

// PromotionAnalysis is the result of a career progression evaluation.
type PromotionAnalysis struct {
	CurrentPosition Position             `json:"current_position"`
	Tally           IndicatorTally       `json:"tally"`
	Candidates      []PositionAssessment `json:"candidates"`
	NextTarget      *PositionAssessment  `json:"next_target,omitempty"`
	AllClear        bool                 `json:"all_clear"`
}
