package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type summaryService interface {
	Quarterly(ctx context.Context, batchID string, quarter int) (*models.QuarterlySummary, error)
	Final(ctx context.Context, batchID string) (*models.FinalSummary, error)
}

// SummaryHandler exposes quarterly and final summaries.
type SummaryHandler struct {
	summaries summaryService
}

// NewSummaryHandler constructs handler.
func NewSummaryHandler(summaries summaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Quarterly godoc
// @Summary Quarterly summary
// @Tags Summaries
// @Produce json
// @Param batchId query string true "Batch"
// @Param quarter query int true "Quarter (1-4)"
// @Success 200 {object} response.Envelope
// @Router /summaries/quarterly [get]
func (h *SummaryHandler) Quarterly(c *gin.Context) {
	quarter, err := strconv.Atoi(c.Query("quarter"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "quarter must be a number"))
		return
	}
	summary, err := h.summaries.Quarterly(c.Request.Context(), c.Query("batchId"), quarter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Final godoc
// @Summary Final grades and promotion status
// @Tags Summaries
// @Produce json
// @Param batchId query string true "Batch"
// @Success 200 {object} response.Envelope
// @Router /summaries/final [get]
func (h *SummaryHandler) Final(c *gin.Context) {
	summary, err := h.summaries.Final(c.Request.Context(), c.Query("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
