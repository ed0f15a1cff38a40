package grading

import "github.com/noah-isme/class-record-api/internal/models"

// Positions is the teaching career line with the rating requirements for each
// position, lowest salary grade first.
var Positions = []models.Position{
	{Code: "T1", Title: "Teacher I", SalaryGrade: 11},
	{Code: "T2", Title: "Teacher II", SalaryGrade: 12,
		Requirement: "At least 6 Proficient COIs at Very Satisfactory; and 4 Proficient NCOIs at Very Satisfactory"},
	{Code: "T3", Title: "Teacher III", SalaryGrade: 13,
		Requirement: "At least 6 Proficient COIs at Very Satisfactory and 2 at Outstanding; and 4 Proficient NCOIs at Very Satisfactory"},
	{Code: "T4", Title: "Teacher IV", SalaryGrade: 14,
		Requirement: "At least 7 Highly Proficient COIs at Very Satisfactory; and 5 Highly Proficient NCOIs at Very Satisfactory"},
	{Code: "T5", Title: "Teacher V", SalaryGrade: 15,
		Requirement: "At least 7 Highly Proficient COIs at Very Satisfactory and 3 at Outstanding; and 5 Highly Proficient NCOIs at Very Satisfactory"},
	{Code: "T6", Title: "Teacher VI", SalaryGrade: 16,
		Requirement: "At least 7 Highly Proficient COIs at Outstanding; and 5 Highly Proficient NCOIs at Very Satisfactory and 2 at Outstanding"},
	{Code: "T7", Title: "Teacher VII", SalaryGrade: 17,
		Requirement: "At least 7 Highly Proficient COIs at Outstanding; and 5 Highly Proficient NCOIs at Outstanding"},
	{Code: "MT1", Title: "Master Teacher I", SalaryGrade: 18,
		Requirement: "At least 8 Highly Proficient COIs at Outstanding; and 5 Highly Proficient NCOIs at Outstanding"},
	{Code: "MT2", Title: "Master Teacher II", SalaryGrade: 19,
		Requirement: "At least 8 Highly Proficient COIs at Outstanding; and 6 Highly Proficient NCOIs at Outstanding"},
	{Code: "MT3", Title: "Master Teacher III", SalaryGrade: 20,
		Requirement: "At least 9 Distinguished COIs at Outstanding; and 6 Distinguished NCOIs at Outstanding"},
	{Code: "MT4", Title: "Master Teacher IV", SalaryGrade: 21,
		Requirement: "At least 9 Distinguished COIs at Outstanding; and 6 Distinguished NCOIs at Outstanding"},
	{Code: "MT5", Title: "Master Teacher V", SalaryGrade: 22,
		Requirement: "At least 9 Distinguished COIs at Outstanding; and 6 Distinguished NCOIs at Outstanding"},
}

// FindPosition looks up a position by code.
func FindPosition(code string) (models.Position, bool) {
	for _, p := range Positions {
		if p.Code == code {
			return p, true
		}
	}
	return models.Position{}, false
}
