package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/internal/service"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type classRecordService interface {
	Settings(ctx context.Context, key models.SettingsKey) (*service.SettingsResult, error)
	UpdateSettings(ctx context.Context, req service.UpdateSettingsRequest) (*service.SettingsResult, error)
	UpsertScore(ctx context.Context, req service.ScoreRequest) (*models.ClassRecordRow, error)
	BulkUpsert(ctx context.Context, req service.BulkScoresRequest) (*service.BulkScoresResult, error)
	ClassRecord(ctx context.Context, key models.SettingsKey) (*models.ClassRecord, error)
}

// ClassRecordHandler exposes settings, score entry and the computed grid.
type ClassRecordHandler struct {
	records classRecordService
}

// NewClassRecordHandler constructs handler.
func NewClassRecordHandler(records classRecordService) *ClassRecordHandler {
	return &ClassRecordHandler{records: records}
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

func invalidQuery(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters")
}

func warningsMeta(warnings []string) map[string]interface{} {
	if len(warnings) == 0 {
		return nil
	}
	return map[string]interface{}{"warnings": warnings}
}

// GetSettings godoc
// @Summary Get subject quarter settings
// @Description Settings are created with subject default weights on first access.
// @Tags ClassRecords
// @Produce json
// @Param subject query string true "Subject"
// @Param quarter query int true "Quarter (1-4)"
// @Param batchId query string true "Batch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /class-records/settings [get]
func (h *ClassRecordHandler) GetSettings(c *gin.Context) {
	var key models.SettingsKey
	if err := c.ShouldBindQuery(&key); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	result, err := h.records.Settings(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, warningsMeta(result.Warnings))
}

// UpdateSettings godoc
// @Summary Update max scores and weights
// @Tags ClassRecords
// @Accept json
// @Produce json
// @Param payload body service.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /class-records/settings [put]
func (h *ClassRecordHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.records.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, warningsMeta(result.Warnings))
}

// Get godoc
// @Summary Computed class record
// @Tags ClassRecords
// @Produce json
// @Param subject query string true "Subject"
// @Param quarter query int true "Quarter (1-4)"
// @Param batchId query string true "Batch"
// @Success 200 {object} response.Envelope
// @Router /class-records [get]
func (h *ClassRecordHandler) Get(c *gin.Context) {
	var key models.SettingsKey
	if err := c.ShouldBindQuery(&key); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	grid, err := h.records.ClassRecord(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, warningsMeta(grid.Warnings))
}

// UpsertScore godoc
// @Summary Set or clear one score
// @Tags ClassRecords
// @Accept json
// @Produce json
// @Param payload body service.ScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /class-records/scores [put]
func (h *ClassRecordHandler) UpsertScore(c *gin.Context) {
	var req service.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	row, err := h.records.UpsertScore(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row)
}

// BulkScores godoc
// @Summary Import pasted scores
// @Description mode=atomic rejects the whole import on any invalid cell; mode=partialOnError saves the valid cells.
// @Tags ClassRecords
// @Accept json
// @Produce json
// @Param payload body service.BulkScoresRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /class-records/scores/bulk [post]
func (h *ClassRecordHandler) BulkScores(c *gin.Context) {
	var req service.BulkScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.records.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		if result != nil {
			response.ErrorWithData(c, err, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
