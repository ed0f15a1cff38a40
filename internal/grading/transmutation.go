// Package grading implements the class record computation engine: component
// percentages, initial grades, transmutation and the classifications derived
// from a quarterly grade. Every function here is pure and total.
package grading

import "math"

// FloorGrade is the lowest transmuted grade.
const FloorGrade = 60

// TransmutationRow maps an initial-grade range to an official quarterly grade.
type TransmutationRow struct {
	Min   float64
	Max   float64
	Grade int
}

// contains reports whether g falls in the row. Rows carry two-decimal edges, so the
// upper bound is treated as exclusive at the next hundredth.
func (r TransmutationRow) contains(g float64) bool {
	upper := math.Round((r.Max+0.01)*100) / 100
	return g >= r.Min && g < upper
}

// transmutationTable is ordered from the highest band down. The 56.00-59.99 band is
// not part of the table; values there resolve to FloorGrade.
var transmutationTable = [...]TransmutationRow{
	{Min: 100, Max: 100, Grade: 100},
	{Min: 98.40, Max: 99.99, Grade: 99},
	{Min: 96.80, Max: 98.39, Grade: 98},
	{Min: 95.20, Max: 96.79, Grade: 97},
	{Min: 93.60, Max: 95.19, Grade: 96},
	{Min: 92.00, Max: 93.59, Grade: 95},
	{Min: 90.40, Max: 91.99, Grade: 94},
	{Min: 88.80, Max: 90.39, Grade: 93},
	{Min: 87.20, Max: 88.79, Grade: 92},
	{Min: 85.60, Max: 87.19, Grade: 91},
	{Min: 84.00, Max: 85.59, Grade: 90},
	{Min: 82.40, Max: 83.99, Grade: 89},
	{Min: 80.80, Max: 82.39, Grade: 88},
	{Min: 79.20, Max: 80.79, Grade: 87},
	{Min: 77.60, Max: 79.19, Grade: 86},
	{Min: 76.00, Max: 77.59, Grade: 85},
	{Min: 74.40, Max: 75.99, Grade: 84},
	{Min: 72.80, Max: 74.39, Grade: 83},
	{Min: 71.20, Max: 72.79, Grade: 82},
	{Min: 69.60, Max: 71.19, Grade: 81},
	{Min: 68.00, Max: 69.59, Grade: 80},
	{Min: 66.40, Max: 67.99, Grade: 79},
	{Min: 64.80, Max: 66.39, Grade: 78},
	{Min: 63.20, Max: 64.79, Grade: 77},
	{Min: 61.60, Max: 63.19, Grade: 76},
	{Min: 60.00, Max: 61.59, Grade: 75},
	{Min: 52.00, Max: 55.99, Grade: 73},
	{Min: 48.00, Max: 51.99, Grade: 72},
	{Min: 44.00, Max: 47.99, Grade: 71},
	{Min: 40.00, Max: 43.99, Grade: 70},
	{Min: 36.00, Max: 39.99, Grade: 69},
	{Min: 32.00, Max: 35.99, Grade: 68},
	{Min: 28.00, Max: 31.99, Grade: 67},
	{Min: 24.00, Max: 27.99, Grade: 66},
	{Min: 20.00, Max: 23.99, Grade: 65},
	{Min: 16.00, Max: 19.99, Grade: 64},
	{Min: 12.00, Max: 15.99, Grade: 63},
	{Min: 8.00, Max: 11.99, Grade: 62},
	{Min: 4.00, Max: 7.99, Grade: 61},
	{Min: 0, Max: 3.99, Grade: 60},
}

// TransmutationTable returns a copy of the lookup table.
func TransmutationTable() []TransmutationRow {
	rows := make([]TransmutationRow, len(transmutationTable))
	copy(rows, transmutationTable[:])
	return rows
}

// Transmute converts an initial grade into the official quarterly grade.
// Negative input and values outside every band return FloorGrade.
func Transmute(initialGrade float64) int {
	if initialGrade < 0 {
		return FloorGrade
	}
	for _, row := range transmutationTable {
		if row.contains(initialGrade) {
			return row.Grade
		}
	}
	return FloorGrade
}

// TransmuteResult transmutes a computed result, returning nil when the record has no
// grades yet.
func TransmuteResult(initialGrade *float64) *int {
	if initialGrade == nil {
		return nil
	}
	grade := Transmute(*initialGrade)
	return &grade
}
