package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/internal/service"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type careerService interface {
	Positions(ctx context.Context) ([]models.Position, error)
	Evaluate(ctx context.Context, req service.EvaluateCareerRequest) (*models.PromotionAnalysis, error)
}

// CareerHandler exposes the career progression calculator.
type CareerHandler struct {
	career careerService
}

// NewCareerHandler constructs handler.
func NewCareerHandler(career careerService) *CareerHandler {
	return &CareerHandler{career: career}
}

// Positions godoc
// @Summary List teaching positions
// @Tags Career
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /career/positions [get]
func (h *CareerHandler) Positions(c *gin.Context) {
	positions, err := h.career.Positions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, positions)
}

// Evaluate godoc
// @Summary Evaluate promotion eligibility
// @Tags Career
// @Accept json
// @Produce json
// @Param payload body service.EvaluateCareerRequest true "Rating grid"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /career/evaluate [post]
func (h *CareerHandler) Evaluate(c *gin.Context) {
	var req service.EvaluateCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	analysis, err := h.career.Evaluate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis)
}
