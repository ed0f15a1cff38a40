package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/models"
)

func slots(values ...int) models.ScoreSlots {
	return models.ScoreSlotsOf(10, values...)
}

func exampleSettings() *models.SubjectQuarterSettings {
	return &models.SubjectQuarterSettings{
		Subject:                "English",
		Quarter:                1,
		BatchID:                "batch-1",
		WrittenWorksMax:        slots(20, 20),
		PerformanceTasksMax:    slots(30, 30),
		QuarterlyAssessmentMax: i(50),
		WWPercentage:           0.30,
		PTPercentage:           0.50,
		QAPercentage:           0.20,
	}
}

func TestCalculateInitialGradeEmptyRecord(t *testing.T) {
	record := models.NewStudentQuarterlyRecord(models.RecordKey{StudentID: "s1", Subject: "English", Quarter: 1, BatchID: "batch-1"})
	result := CalculateInitialGrade(record, exampleSettings())
	assert.Nil(t, result.InitialGrade)
	assert.Zero(t, result.WWTotal)
	assert.Zero(t, result.PTTotal)
	assert.Zero(t, result.WWPs)
	assert.Zero(t, result.QAPs)
	assert.Nil(t, QuarterlyGrade(record, exampleSettings()))
}

func TestCalculateInitialGradeNilInputs(t *testing.T) {
	assert.Nil(t, CalculateInitialGrade(nil, exampleSettings()).InitialGrade)

	record := &models.StudentQuarterlyRecord{WrittenWorks: slots(8)}
	result := CalculateInitialGrade(record, nil)
	assert.Equal(t, 8, result.WWTotal)
	assert.Zero(t, result.WWPs, "no max scores configured")
	require.NotNil(t, result.InitialGrade)
	assert.Zero(t, *result.InitialGrade)
}

func TestCalculateInitialGradeEffectiveMaxExcludesUngradedSlots(t *testing.T) {
	settings := &models.SubjectQuarterSettings{
		WrittenWorksMax: slots(10, 10, 10, 10, 10, 10, 10, 10, 10, 10),
		WWPercentage:    0.30,
		PTPercentage:    0.50,
		QAPercentage:    0.20,
	}
	record := &models.StudentQuarterlyRecord{WrittenWorks: slots(8, 9)}
	result := CalculateInitialGrade(record, settings)
	assert.Equal(t, 17, result.WWTotal)
	assert.InDelta(t, 85.0, result.WWPs, 1e-9)
	assert.InDelta(t, 25.5, result.WWWs, 1e-9)
}

func TestCalculateInitialGradeWorkedExample(t *testing.T) {
	record := &models.StudentQuarterlyRecord{
		WrittenWorks:        slots(18, 16),
		PerformanceTasks:    slots(28, 25),
		QuarterlyAssessment: i(45),
	}
	result := CalculateInitialGrade(record, exampleSettings())

	assert.Equal(t, 34, result.WWTotal)
	assert.InDelta(t, 85.0, result.WWPs, 1e-9)
	assert.InDelta(t, 25.5, result.WWWs, 1e-9)
	assert.Equal(t, 53, result.PTTotal)
	assert.InDelta(t, 88.33, result.PTPs, 0.01)
	assert.InDelta(t, 44.17, result.PTWs, 0.01)
	assert.InDelta(t, 90.0, result.QAPs, 1e-9)
	assert.InDelta(t, 18.0, result.QAWs, 1e-9)
	require.NotNil(t, result.InitialGrade)
	assert.InDelta(t, 87.67, *result.InitialGrade, 0.01)

	quarterly := QuarterlyGrade(record, exampleSettings())
	require.NotNil(t, quarterly)
	assert.Equal(t, 92, *quarterly)
	assert.Equal(t, RemarkPassed, IntRemark(quarterly))
	grade := float64(*quarterly)
	assert.Equal(t, Honor, HonorStatus(&grade))
}

func TestCalculateInitialGradeZeroScoresQuirk(t *testing.T) {
	// WW/PT entered as zero do not count as graded.
	record := &models.StudentQuarterlyRecord{WrittenWorks: slots(0, 0), PerformanceTasks: slots(0)}
	result := CalculateInitialGrade(record, exampleSettings())
	assert.Nil(t, result.InitialGrade)

	// A recorded zero QA does count as graded.
	record.QuarterlyAssessment = i(0)
	result = CalculateInitialGrade(record, exampleSettings())
	require.NotNil(t, result.InitialGrade)
	assert.Zero(t, *result.InitialGrade)
}

func TestCalculateInitialGradeQAGuards(t *testing.T) {
	settings := exampleSettings()
	settings.QuarterlyAssessmentMax = nil
	record := &models.StudentQuarterlyRecord{QuarterlyAssessment: i(40)}
	result := CalculateInitialGrade(record, settings)
	assert.Zero(t, result.QAPs)
	require.NotNil(t, result.InitialGrade)

	settings.QuarterlyAssessmentMax = i(0)
	result = CalculateInitialGrade(record, settings)
	assert.Zero(t, result.QAPs)
}

func TestCalculateInitialGradeDefaultsUnsetWeights(t *testing.T) {
	settings := exampleSettings()
	settings.WWPercentage, settings.PTPercentage, settings.QAPercentage = 0, 0, 0
	record := &models.StudentQuarterlyRecord{WrittenWorks: slots(20)}
	result := CalculateInitialGrade(record, settings)
	assert.InDelta(t, 30.0, result.WWWs, 1e-9)
}

func TestCalculateInitialGradeDoesNotMutateInputs(t *testing.T) {
	settings := exampleSettings()
	record := &models.StudentQuarterlyRecord{WrittenWorks: slots(18, 16), QuarterlyAssessment: i(45)}
	first := CalculateInitialGrade(record, settings)
	second := CalculateInitialGrade(record, settings)
	assert.Equal(t, first, second)
	assert.Equal(t, slots(18, 16), record.WrittenWorks)
	assert.Equal(t, slots(20, 20), settings.WrittenWorksMax)
}
