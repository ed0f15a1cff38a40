package grading

import "math"

// PassingGrade is the lowest rounded grade that passes.
const PassingGrade = 75

const (
	HonorHighest = "With Highest Honors"
	HonorHigh    = "With High Honors"
	Honor        = "With Honors"

	RemarkPassed = "PASSED"
	RemarkFailed = "FAILED"
)

type honorTier struct {
	min   int
	label string
}

// honorTiers are checked highest first; bounds are inclusive.
var honorTiers = []honorTier{
	{min: 98, label: HonorHighest},
	{min: 95, label: HonorHigh},
	{min: 90, label: Honor},
}

func roundGrade(grade float64) int {
	return int(math.Floor(grade + 0.5))
}

// HonorStatus returns the honor label for a grade, or "" when there is no grade or
// the grade is below every tier.
func HonorStatus(grade *float64) string {
	if grade == nil {
		return ""
	}
	rounded := roundGrade(*grade)
	for _, tier := range honorTiers {
		if rounded >= tier.min {
			return tier.label
		}
	}
	return ""
}

// Remark returns PASSED or FAILED for a grade, or "" when there is no grade.
func Remark(grade *float64) string {
	if grade == nil {
		return ""
	}
	if roundGrade(*grade) >= PassingGrade {
		return RemarkPassed
	}
	return RemarkFailed
}

// IntRemark is Remark for transmuted integer grades.
func IntRemark(grade *int) string {
	if grade == nil {
		return ""
	}
	g := float64(*grade)
	return Remark(&g)
}

// RoundedMean averages the non-nil grades and rounds to the nearest integer. Missing
// grades are skipped rather than counted as zero; nil is returned when none remain.
func RoundedMean(grades ...*int) *int {
	mean := Mean(grades...)
	if mean == nil {
		return nil
	}
	rounded := roundGrade(*mean)
	return &rounded
}

// Mean averages the non-nil grades without rounding.
func Mean(grades ...*int) *float64 {
	sum, count := 0, 0
	for _, g := range grades {
		if g == nil {
			continue
		}
		sum += *g
		count++
	}
	if count == 0 {
		return nil
	}
	mean := float64(sum) / float64(count)
	return &mean
}

// MAPEHComponents are the sub-subjects averaged into the MAPEH grade.
var MAPEHComponents = []string{"Music", "Arts", "PE", "Health"}

// MAPEHComposite averages the present Music, Arts, PE and Health grades.
func MAPEHComposite(components ...*int) *int {
	return RoundedMean(components...)
}

// FinalGrade is the rounded mean of the quarterly grades recorded so far.
func FinalGrade(quarters ...*int) *int {
	return RoundedMean(quarters...)
}
