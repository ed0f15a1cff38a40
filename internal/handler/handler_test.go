package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/internal/service"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type classRecordServiceMock struct {
	settingsKey models.SettingsKey
	settings    *service.SettingsResult
	grid        *models.ClassRecord
	row         *models.ClassRecordRow
	bulk        *service.BulkScoresResult
	err         error
}

func (m *classRecordServiceMock) Settings(ctx context.Context, key models.SettingsKey) (*service.SettingsResult, error) {
	m.settingsKey = key
	return m.settings, m.err
}

func (m *classRecordServiceMock) UpdateSettings(ctx context.Context, req service.UpdateSettingsRequest) (*service.SettingsResult, error) {
	return m.settings, m.err
}

func (m *classRecordServiceMock) UpsertScore(ctx context.Context, req service.ScoreRequest) (*models.ClassRecordRow, error) {
	return m.row, m.err
}

func (m *classRecordServiceMock) BulkUpsert(ctx context.Context, req service.BulkScoresRequest) (*service.BulkScoresResult, error) {
	return m.bulk, m.err
}

func (m *classRecordServiceMock) ClassRecord(ctx context.Context, key models.SettingsKey) (*models.ClassRecord, error) {
	m.settingsKey = key
	return m.grid, m.err
}

func TestClassRecordHandlerGetSettingsBindsQuery(t *testing.T) {
	mock := &classRecordServiceMock{settings: &service.SettingsResult{
		Settings:    &models.SubjectQuarterSettings{Subject: "English", Quarter: 2, BatchID: "b1"},
		WeightTotal: 0.9,
		Warnings:    []string{service.WarningWeightsUnbalanced},
	}}
	h := NewClassRecordHandler(mock)

	c, w := newGinContext(http.MethodGet, "/class-records/settings?subject=English&quarter=2&batchId=b1", nil)
	h.GetSettings(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.SettingsKey{Subject: "English", Quarter: 2, BatchID: "b1"}, mock.settingsKey)
	env := decode(t, w)
	require.Contains(t, env.Meta, "warnings")
}

func TestClassRecordHandlerGetSettingsRejectsBadQuarter(t *testing.T) {
	h := NewClassRecordHandler(&classRecordServiceMock{})

	c, w := newGinContext(http.MethodGet, "/class-records/settings?subject=English&quarter=two&batchId=b1", nil)
	h.GetSettings(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestClassRecordHandlerUpsertScoreInvalidJSON(t *testing.T) {
	h := NewClassRecordHandler(&classRecordServiceMock{})

	c, w := newGinContext(http.MethodPut, "/class-records/scores", []byte("{"))
	h.UpsertScore(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassRecordHandlerUpsertScorePropagatesServiceError(t *testing.T) {
	mock := &classRecordServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "score exceeds max")}
	h := NewClassRecordHandler(mock)

	score := 30
	payload, _ := json.Marshal(service.ScoreRequest{StudentID: "s1", Subject: "English", Quarter: 1, BatchID: "b1", Component: "ww", Score: &score})
	c, w := newGinContext(http.MethodPut, "/class-records/scores", payload)
	h.UpsertScore(c)

	require.Equal(t, appErrors.ErrValidation.Status, w.Code)
	require.Equal(t, "score exceeds max", decode(t, w).Error.Message)
}

func TestClassRecordHandlerBulkScoresReturnsFailuresWithError(t *testing.T) {
	mock := &classRecordServiceMock{
		bulk: &service.BulkScoresResult{Failures: []service.BulkScoreFailure{{StudentID: "s1", Component: "ww", Reason: "score exceeds max"}}},
		err:  appErrors.Clone(appErrors.ErrValidation, "bulk import rejected"),
	}
	h := NewClassRecordHandler(mock)

	payload := []byte(`{"subject":"English","quarter":1,"batch_id":"b1","mode":"atomic","items":[{"student_id":"s1","component":"ww","index":0,"score":99}]}`)
	c, w := newGinContext(http.MethodPost, "/class-records/scores/bulk", payload)
	h.BulkScores(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	var result service.BulkScoresResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Failures, 1)
}

func TestClassRecordHandlerGet(t *testing.T) {
	mock := &classRecordServiceMock{grid: &models.ClassRecord{Rows: []models.ClassRecordRow{{StudentID: "s1"}}}}
	h := NewClassRecordHandler(mock)

	c, w := newGinContext(http.MethodGet, "/class-records?subject=Math&quarter=1&batchId=b9", nil)
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "b9", mock.settingsKey.BatchID)
}

type summaryServiceMock struct {
	quarter int
	err     error
}

func (m *summaryServiceMock) Quarterly(ctx context.Context, batchID string, quarter int) (*models.QuarterlySummary, error) {
	m.quarter = quarter
	return &models.QuarterlySummary{BatchID: batchID, Quarter: quarter}, m.err
}

func (m *summaryServiceMock) Final(ctx context.Context, batchID string) (*models.FinalSummary, error) {
	return &models.FinalSummary{BatchID: batchID}, m.err
}

func TestSummaryHandlerQuarterly(t *testing.T) {
	mock := &summaryServiceMock{}
	h := NewSummaryHandler(mock)

	c, w := newGinContext(http.MethodGet, "/summaries/quarterly?batchId=b1&quarter=3", nil)
	h.Quarterly(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 3, mock.quarter)
}

func TestSummaryHandlerQuarterlyRequiresNumericQuarter(t *testing.T) {
	h := NewSummaryHandler(&summaryServiceMock{})

	c, w := newGinContext(http.MethodGet, "/summaries/quarterly?batchId=b1", nil)
	h.Quarterly(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryHandlerFinalNotFound(t *testing.T) {
	h := NewSummaryHandler(&summaryServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "batch not found")})

	c, w := newGinContext(http.MethodGet, "/summaries/final?batchId=missing", nil)
	h.Final(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

type careerServiceMock struct {
	err error
}

func (m *careerServiceMock) Positions(ctx context.Context) ([]models.Position, error) {
	return []models.Position{{Code: "T1"}}, m.err
}

func (m *careerServiceMock) Evaluate(ctx context.Context, req service.EvaluateCareerRequest) (*models.PromotionAnalysis, error) {
	return &models.PromotionAnalysis{CurrentPosition: models.Position{Code: req.CurrentPosition}}, m.err
}

func TestCareerHandlerEvaluate(t *testing.T) {
	h := NewCareerHandler(&careerServiceMock{})

	payload := []byte(`{"current_position":"T1","years":[{"school_year":"2023-2024","objectives":[{"type":"COI","rating":"VS"}]}]}`)
	c, w := newGinContext(http.MethodPost, "/career/evaluate", payload)
	h.Evaluate(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestCareerHandlerEvaluateDisabled(t *testing.T) {
	h := NewCareerHandler(&careerServiceMock{err: appErrors.Clone(appErrors.ErrFeatureDisabled, "career calculator is disabled")})

	c, w := newGinContext(http.MethodPost, "/career/evaluate", []byte(`{"current_position":"T1"}`))
	h.Evaluate(c)

	require.Equal(t, appErrors.ErrFeatureDisabled.Status, w.Code)
}

func TestCareerHandlerPositions(t *testing.T) {
	h := NewCareerHandler(&careerServiceMock{})

	c, w := newGinContext(http.MethodGet, "/career/positions", nil)
	h.Positions(c)

	require.Equal(t, http.StatusOK, w.Code)
}

type exportServiceMock struct {
	result   *models.ExportResult
	download *service.ExportDownload
	err      error
}

func (m *exportServiceMock) Generate(ctx context.Context, req service.ExportRequest) (*models.ExportResult, error) {
	return m.result, m.err
}

func (m *exportServiceMock) Open(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.err
}

func TestExportHandlerGenerate(t *testing.T) {
	h := NewExportHandler(&exportServiceMock{result: &models.ExportResult{ID: "e1", URL: "/api/v1/exports/tok"}})

	payload := []byte(`{"kind":"final_summary","format":"csv","batch_id":"b1"}`)
	c, w := newGinContext(http.MethodPost, "/exports", payload)
	h.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	h := NewExportHandler(&exportServiceMock{download: &service.ExportDownload{File: file, Name: "report.csv", ContentType: "text/csv", Size: 4}})

	c, w := newGinContext(http.MethodGet, "/exports/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a,b\n", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Disposition"), "report.csv")
}

func TestExportHandlerDownloadExpired(t *testing.T) {
	h := NewExportHandler(&exportServiceMock{err: appErrors.Clone(appErrors.ErrExportExpired, "export link expired")})

	c, w := newGinContext(http.MethodGet, "/exports/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	h.Download(c)

	require.Equal(t, http.StatusGone, w.Code)
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, pingerStub{})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)

	h = NewMetricsHandler(nil, pingerStub{err: errors.New("connection refused")})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.IncExport("class_record", "csv")
	h := NewMetricsHandler(metrics, nil)

	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "class_record_exports_rendered_total")
}
