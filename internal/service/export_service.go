package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
	"github.com/noah-isme/class-record-api/pkg/export"
	"github.com/noah-isme/class-record-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type classRecordSource interface {
	ClassRecord(ctx context.Context, key models.SettingsKey) (*models.ClassRecord, error)
}

type summarySource interface {
	Quarterly(ctx context.Context, batchID string, quarter int) (*models.QuarterlySummary, error)
	Final(ctx context.Context, batchID string) (*models.FinalSummary, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Enabled   bool
	APIPrefix string
	ResultTTL time.Duration
}

// ExportRequest selects the view and format to render.
type ExportRequest struct {
	Kind    models.ExportKind   `json:"kind" validate:"required,oneof=class_record quarterly_summary final_summary"`
	Format  models.ExportFormat `json:"format" validate:"required"`
	BatchID string              `json:"batch_id" validate:"required"`
	Subject string              `json:"subject" validate:"required_if=Kind class_record"`
	Quarter int                 `json:"quarter" validate:"omitempty,min=1,max=4"`
}

// ExportDownload is an opened export file. Callers close File.
type ExportDownload struct {
	File        *os.File
	Name        string
	ContentType string
	Size        int64
}

var contentTypes = map[models.ExportFormat]string{
	models.ExportFormatCSV:  "text/csv",
	models.ExportFormatPDF:  "application/pdf",
	models.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportService renders class records and summaries to files and issues signed
// download links for them.
type ExportService struct {
	records   classRecordSource
	summaries summarySource
	storage   fileStorage
	renderers map[models.ExportFormat]renderer
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV, PDF and XLSX renderers.
func NewExportService(records classRecordSource, summaries summarySource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		records:   records,
		summaries: summaries,
		storage:   store,
		renderers: map[models.ExportFormat]renderer{
			models.ExportFormatCSV:  export.NewCSVExporter(),
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter("Class Record"),
		},
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *ExportService) checkEnabled() error {
	if !s.cfg.Enabled {
		return appErrors.Clone(appErrors.ErrFeatureDisabled, "exports are disabled")
	}
	return nil
}

// Generate renders the requested view, stores it and returns a signed download link.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*models.ExportResult, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	render, ok := s.renderers[req.Format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", req.Format))
	}
	if req.Kind != models.ExportKindFinalSummary && req.Quarter == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quarter is required")
	}

	dataset, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}
	payload, err := render.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	id := uuid.NewString()
	relPath, err := s.storage.Save(s.buildFilename(id, req), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.metrics.IncExport(string(req.Kind), string(req.Format))
	s.logger.Info("export generated",
		zap.String("export_id", id),
		zap.String("kind", string(req.Kind)),
		zap.String("format", string(req.Format)),
		zap.Int("bytes", len(payload)))

	return &models.ExportResult{
		ID:           id,
		Kind:         req.Kind,
		Format:       req.Format,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and opens the file it points at.
func (s *ExportService) Open(ctx context.Context, token string) (*ExportDownload, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	claims, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrExportExpired, "export link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export")
	}
	format := models.ExportFormat(strings.TrimPrefix(filepath.Ext(claims.Path), "."))
	contentType, ok := contentTypes[format]
	if !ok {
		contentType = "application/octet-stream"
	}
	return &ExportDownload{File: file, Name: filepath.Base(claims.Path), ContentType: contentType, Size: info.Size()}, nil
}

// Cleanup removes files older than ttl, defaulting to the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func (s *ExportService) buildFilename(id string, req ExportRequest) string {
	parts := []string{sanitizeFilename(req.BatchID)}
	if req.Subject != "" && req.Kind == models.ExportKindClassRecord {
		parts = append(parts, sanitizeFilename(req.Subject))
	}
	if req.Quarter > 0 && req.Kind != models.ExportKindFinalSummary {
		parts = append(parts, "q"+strconv.Itoa(req.Quarter))
	}
	parts = append(parts, s.now().UTC().Format("20060102_150405"), id[:8])
	return fmt.Sprintf("%s/%s.%s", req.Kind, strings.Join(parts, "_"), req.Format)
}

const maxFilenameRunes = 60

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", ".", "", "__", "_")
	result := strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		return string(runes[:maxFilenameRunes])
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, req ExportRequest) (export.Dataset, error) {
	switch req.Kind {
	case models.ExportKindClassRecord:
		grid, err := s.records.ClassRecord(ctx, models.SettingsKey{Subject: req.Subject, Quarter: req.Quarter, BatchID: req.BatchID})
		if err != nil {
			return export.Dataset{}, err
		}
		return classRecordDataset(grid), nil
	case models.ExportKindQuarterlySummary:
		summary, err := s.summaries.Quarterly(ctx, req.BatchID, req.Quarter)
		if err != nil {
			return export.Dataset{}, err
		}
		return quarterlySummaryDataset(summary), nil
	case models.ExportKindFinalSummary:
		summary, err := s.summaries.Final(ctx, req.BatchID)
		if err != nil {
			return export.Dataset{}, err
		}
		return finalSummaryDataset(summary), nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %q", req.Kind))
	}
}
