package service

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/class-record-api/internal/grading"
	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/pkg/export"
)

const (
	colNumber  = "#"
	colLearner = "Learner"
	colSex     = "Sex"
)

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatPercent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 0, 64) + "%"
}

// configuredColumns returns the slot indexes that have a max score.
func configuredColumns(maxScores models.ScoreSlots) []int {
	cols := make([]int, 0, len(maxScores))
	for i, m := range maxScores {
		if m != nil {
			cols = append(cols, i)
		}
	}
	return cols
}

func sumSlots(slots models.ScoreSlots) int {
	total := 0
	for _, v := range slots {
		if v != nil {
			total += *v
		}
	}
	return total
}

// classRecordDataset lays the grid out like the printed class record: a highest
// possible score row followed by one row per learner.
func classRecordDataset(grid *models.ClassRecord) export.Dataset {
	settings := grid.Settings
	weights := grading.SettingsWeights(&settings)
	wwCols := configuredColumns(settings.WrittenWorksMax)
	ptCols := configuredColumns(settings.PerformanceTasksMax)

	headers := []string{colNumber, colLearner, colSex}
	for _, i := range wwCols {
		headers = append(headers, fmt.Sprintf("WW%d", i+1))
	}
	headers = append(headers, "WW Total", "WW PS", "WW WS")
	for _, i := range ptCols {
		headers = append(headers, fmt.Sprintf("PT%d", i+1))
	}
	headers = append(headers, "PT Total", "PT PS", "PT WS", "QA", "QA PS", "QA WS", "Initial Grade", "Quarterly Grade", "Remark")

	hps := map[string]string{
		colLearner: "HIGHEST POSSIBLE SCORE",
		"WW Total": strconv.Itoa(sumSlots(settings.WrittenWorksMax)),
		"WW PS":    "100.00",
		"WW WS":    formatPercent(weights.WrittenWorks),
		"PT Total": strconv.Itoa(sumSlots(settings.PerformanceTasksMax)),
		"PT PS":    "100.00",
		"PT WS":    formatPercent(weights.PerformanceTasks),
		"QA":       formatInt(settings.QuarterlyAssessmentMax),
		"QA PS":    "100.00",
		"QA WS":    formatPercent(weights.QuarterlyAssessment),
	}
	for _, i := range wwCols {
		hps[fmt.Sprintf("WW%d", i+1)] = formatInt(settings.WrittenWorksMax[i])
	}
	for _, i := range ptCols {
		hps[fmt.Sprintf("PT%d", i+1)] = formatInt(settings.PerformanceTasksMax[i])
	}

	rows := make([]map[string]string, 0, len(grid.Rows)+1)
	rows = append(rows, hps)
	for n, r := range grid.Rows {
		res := r.Result
		row := map[string]string{
			colNumber:         strconv.Itoa(n + 1),
			colLearner:        r.StudentName,
			colSex:            r.Sex,
			"WW Total":        strconv.Itoa(res.WWTotal),
			"WW PS":           formatFloat(&res.WWPs),
			"WW WS":           formatFloat(&res.WWWs),
			"PT Total":        strconv.Itoa(res.PTTotal),
			"PT PS":           formatFloat(&res.PTPs),
			"PT WS":           formatFloat(&res.PTWs),
			"QA PS":           formatFloat(&res.QAPs),
			"QA WS":           formatFloat(&res.QAWs),
			"Initial Grade":   formatFloat(res.InitialGrade),
			"Quarterly Grade": formatInt(r.QuarterlyGrade),
			"Remark":          r.Remark,
		}
		if r.Record != nil {
			for _, i := range wwCols {
				row[fmt.Sprintf("WW%d", i+1)] = formatInt(r.Record.WrittenWorks.At(i))
			}
			for _, i := range ptCols {
				row[fmt.Sprintf("PT%d", i+1)] = formatInt(r.Record.PerformanceTasks.At(i))
			}
			row["QA"] = formatInt(r.Record.QuarterlyAssessment)
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:    fmt.Sprintf("Class Record: %s, Quarter %d", settings.Subject, settings.Quarter),
		Subtitle: fmt.Sprintf("Batch %s, generated %s", settings.BatchID, grid.GeneratedAt.Format("2006-01-02 15:04")),
		Headers:  headers,
		Rows:     rows,
	}
}

func quarterlySummaryDataset(summary *models.QuarterlySummary) export.Dataset {
	headers := []string{colNumber, colLearner}
	if len(summary.Rows) > 0 {
		for _, sg := range summary.Rows[0].Subjects {
			headers = append(headers, sg.Subject)
		}
	}
	headers = append(headers, "Average", "Honors", "Remark")

	rows := make([]map[string]string, 0, len(summary.Rows))
	for n, r := range summary.Rows {
		row := map[string]string{
			colNumber:  strconv.Itoa(n + 1),
			colLearner: r.StudentName,
			"Average":  formatFloat(r.Average),
			"Honors":   r.HonorStatus,
			"Remark":   r.Remark,
		}
		for _, sg := range r.Subjects {
			row[sg.Subject] = formatInt(sg.Grade)
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:    fmt.Sprintf("Quarterly Summary: Quarter %d", summary.Quarter),
		Subtitle: fmt.Sprintf("Batch %s, generated %s", summary.BatchID, summary.GeneratedAt.Format("2006-01-02 15:04")),
		Headers:  headers,
		Rows:     rows,
	}
}

func finalSummaryDataset(summary *models.FinalSummary) export.Dataset {
	headers := []string{colNumber, colLearner}
	if len(summary.Rows) > 0 {
		for _, sg := range summary.Rows[0].Subjects {
			headers = append(headers, sg.Subject)
		}
	}
	headers = append(headers, "General Average", "Honors", "Remark", "Status")

	rows := make([]map[string]string, 0, len(summary.Rows))
	for n, r := range summary.Rows {
		row := map[string]string{
			colNumber:         strconv.Itoa(n + 1),
			colLearner:        r.StudentName,
			"General Average": formatFloat(r.GeneralAverage),
			"Honors":          r.HonorStatus,
			"Remark":          r.Remark,
			"Status":          string(r.PromotionStatus),
		}
		for _, sg := range r.Subjects {
			row[sg.Subject] = formatInt(sg.Final)
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:    "Final Grades",
		Subtitle: fmt.Sprintf("Batch %s, generated %s", summary.BatchID, summary.GeneratedAt.Format("2006-01-02 15:04")),
		Headers:  headers,
		Rows:     rows,
	}
}
