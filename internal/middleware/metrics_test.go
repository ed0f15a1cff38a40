package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/service"
)

func TestMetricsRecordsRoutedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()

	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/api/v1/class-records", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/class-records", "/unknown"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
	}

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	series := 0
	for _, mf := range families {
		if mf.GetName() == "class_record_http_requests_total" {
			series = len(mf.GetMetric())
			for _, label := range mf.GetMetric()[0].GetLabel() {
				if label.GetName() == "path" {
					require.Equal(t, "/api/v1/class-records", label.GetValue())
				}
			}
		}
	}
	require.Equal(t, 1, series)
}

func TestMetricsNilService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}
