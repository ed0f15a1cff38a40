package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/grading"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

// EvaluateCareerRequest is a rating grid, oldest school year first.
type EvaluateCareerRequest struct {
	CurrentPosition string              `json:"current_position" validate:"required"`
	Years           []models.RatingYear `json:"years" validate:"required,min=1,max=10,dive"`
}

// CareerService evaluates promotion eligibility against the position table.
type CareerService struct {
	positions []models.Position
	enabled   bool
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCareerService constructs CareerService. A nil position list uses the standard
// teaching career line.
func NewCareerService(positions []models.Position, enabled bool, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CareerService {
	if positions == nil {
		positions = grading.Positions
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerService{positions: positions, enabled: enabled, metrics: metrics, validator: validate, logger: logger}
}

func (s *CareerService) checkEnabled() error {
	if !s.enabled {
		return appErrors.Clone(appErrors.ErrFeatureDisabled, "career progression is disabled")
	}
	return nil
}

// Positions lists the career line, lowest salary grade first.
func (s *CareerService) Positions(ctx context.Context) ([]models.Position, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	out := make([]models.Position, len(s.positions))
	copy(out, s.positions)
	return out, nil
}

func (s *CareerService) findPosition(code string) (models.Position, bool) {
	for _, p := range s.positions {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return models.Position{}, false
}

// Evaluate tallies the rating grid and reports the next position to work toward.
func (s *CareerService) Evaluate(ctx context.Context, req EvaluateCareerRequest) (*models.PromotionAnalysis, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	current, ok := s.findPosition(strings.TrimSpace(req.CurrentPosition))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown position %q", req.CurrentPosition))
	}

	analysis := grading.EvaluatePromotion(req.Years, current, s.positions)
	s.metrics.IncCareerEvaluation(analysis.AllClear)

	fields := []zap.Field{zap.String("current", current.Code), zap.Bool("all_clear", analysis.AllClear)}
	if analysis.NextTarget != nil {
		fields = append(fields, zap.String("next_target", analysis.NextTarget.Position.Code))
	}
	s.logger.Debug("career evaluated", fields...)
	return &analysis, nil
}
