package models

import (
	"strings"
	"time"
)

// Student represents a learner on a class roster (batch).
type Student struct {
	ID         string    `db:"id" json:"id"`
	BatchID    string    `db:"batch_id" json:"batch_id"`
	LRN        string    `db:"lrn" json:"lrn"`
	FirstName  string    `db:"first_name" json:"first_name"`
	MiddleName string    `db:"middle_name" json:"middle_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Sex        string    `db:"sex" json:"sex"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders the roster form "LAST, First M.".
func (s Student) DisplayName() string {
	name := strings.ToUpper(strings.TrimSpace(s.LastName))
	if first := strings.TrimSpace(s.FirstName); first != "" {
		name += ", " + first
	}
	if middle := strings.TrimSpace(s.MiddleName); middle != "" {
		name += " " + strings.ToUpper(middle[:1]) + "."
	}
	return name
}

// Batch is a class section for a school year, the unit settings and records are scoped to.
type Batch struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	SchoolYear string    `db:"school_year" json:"school_year"`
	Subjects   []string  `db:"-" json:"subjects"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
