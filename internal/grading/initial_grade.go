package grading

import "github.com/noah-isme/class-record-api/internal/models"

// component aggregates one multi-item component (Written Works or Performance Tasks).
// Slots without a recorded score are left out of both the total and the denominator,
// so configured-but-unused columns do not drag the percentage down.
func component(scores, maxScores models.ScoreSlots, weight float64) (total int, ps, ws float64) {
	effectiveMax := 0
	for i, score := range scores {
		if score == nil {
			continue
		}
		total += *score
		if m := maxScores.At(i); m != nil {
			effectiveMax += *m
		}
	}
	if effectiveMax > 0 {
		ps = float64(total) / float64(effectiveMax) * 100
	}
	return total, ps, ps * weight
}

// SettingsWeights reads the component weights from settings, falling back to the
// 30/50/20 split for any weight that is unset.
func SettingsWeights(settings *models.SubjectQuarterSettings) Weights {
	w := DefaultWeights
	if settings == nil {
		return w
	}
	if settings.WWPercentage != 0 {
		w.WrittenWorks = settings.WWPercentage
	}
	if settings.PTPercentage != 0 {
		w.PerformanceTasks = settings.PTPercentage
	}
	if settings.QAPercentage != 0 {
		w.QuarterlyAssessment = settings.QAPercentage
	}
	return w
}

// CalculateInitialGrade computes component percentages, weighted scores and the
// initial grade for one student record.
//
// InitialGrade stays nil until something is graded. Written Works and Performance
// Tasks count as graded only when their total is above zero, while the Quarterly
// Assessment counts as soon as a score is recorded, zero included. An all-zero WW/PT
// record with no QA therefore reads as ungraded.
func CalculateInitialGrade(record *models.StudentQuarterlyRecord, settings *models.SubjectQuarterSettings) models.GradeResult {
	var (
		result  models.GradeResult
		weights = SettingsWeights(settings)
		wwMax   models.ScoreSlots
		ptMax   models.ScoreSlots
		qaMax   *int
	)
	if settings != nil {
		wwMax = settings.WrittenWorksMax
		ptMax = settings.PerformanceTasksMax
		qaMax = settings.QuarterlyAssessmentMax
	}
	if record == nil {
		return result
	}

	result.WWTotal, result.WWPs, result.WWWs = component(record.WrittenWorks, wwMax, weights.WrittenWorks)
	result.PTTotal, result.PTPs, result.PTWs = component(record.PerformanceTasks, ptMax, weights.PerformanceTasks)

	qaScore := record.QuarterlyAssessment
	if qaScore != nil && qaMax != nil && *qaMax > 0 {
		result.QAPs = float64(*qaScore) / float64(*qaMax) * 100
	}
	result.QAWs = result.QAPs * weights.QuarterlyAssessment

	if result.WWTotal > 0 || result.PTTotal > 0 || qaScore != nil {
		initial := result.WWWs + result.PTWs + result.QAWs
		result.InitialGrade = &initial
	}
	return result
}

// QuarterlyGrade runs the calculator and transmutes the result. It returns nil when
// the record has no grades.
func QuarterlyGrade(record *models.StudentQuarterlyRecord, settings *models.SubjectQuarterSettings) *int {
	return TransmuteResult(CalculateInitialGrade(record, settings).InitialGrade)
}
