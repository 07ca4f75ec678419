package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-deforest-monitor/internal/config"
	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// stubService serves canned responses behind the service contract
type stubService struct {
	result *models.AnalysisResult
	report *models.BatchReport
	err    error
}

func (s *stubService) AnalyzeSource(ctx context.Context, source string) (*models.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) AnalyzeBytes(ctx context.Context, filename string, data []byte) (*models.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) ProcessDirectory(ctx context.Context, dir string) (*models.BatchReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubService) Status() models.ProcessorStatus {
	return models.ProcessorStatus{Status: "active", TargetWidth: 512, TargetHeight: 512}
}

func (s *stubService) Stats() models.ProcessingStats {
	return models.ProcessingStats{TotalProcessed: 7}
}

func (s *stubService) Export(format string) ([]byte, string, error) {
	switch format {
	case "json":
		return []byte("[]"), "application/json", nil
	case "csv":
		return []byte("source_filename\n"), "text/csv", nil
	default:
		return nil, "", apperrors.NewValidationError("unsupported export format "+format, nil)
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
}

func newTestHandler(svc *stubService) http.Handler {
	gin.SetMode(gin.TestMode)
	return NewHandler(svc, testConfig())
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("Unexpected health body: %s", w.Body.String())
	}
}

func TestProcessSceneSuccess(t *testing.T) {
	svc := &stubService{result: &models.AnalysisResult{
		SourceFilename:          "scene.png",
		DeforestationPercentage: 12.5,
		Confidence:              0.9,
		TotalPixels:             4,
	}}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/satellite/process",
		strings.NewReader(`{"source":"scenes/scene.png"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Response did not parse: %v", err)
	}
	if result.DeforestationPercentage != 12.5 {
		t.Errorf("Expected percentage 12.5, got %g", result.DeforestationPercentage)
	}
}

func TestProcessSceneRejectsMalformedBody(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/satellite/process",
		strings.NewReader(`{"source":`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestProcessSceneRejectsMissingSource(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/satellite/process",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing source, got %d", w.Code)
	}
}

func TestProcessSceneMapsErrorStatus(t *testing.T) {
	svc := &stubService{err: apperrors.NewInvalidImageError("corrupt scene", nil)}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/satellite/process",
		strings.NewReader(`{"source":"scenes/bad.png"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for invalid image, got %d", w.Code)
	}
}

func TestBatchProcessEndpoint(t *testing.T) {
	svc := &stubService{report: &models.BatchReport{
		Processed: []models.AnalysisResult{{SourceFilename: "a.png"}},
		Failed:    []models.BatchError{},
		Summary:   models.BatchSummary{Count: 1},
	}}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/satellite/batch-process",
		strings.NewReader(`{"directory":"scenes"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report models.BatchReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("Response did not parse: %v", err)
	}
	if report.Summary.Count != 1 {
		t.Errorf("Expected 1 processed scene, got %d", report.Summary.Count)
	}
}

func TestStatusEndpoint(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/satellite/status", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"active"`) {
		t.Errorf("Unexpected status body: %s", w.Body.String())
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var stats models.ProcessingStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Response did not parse: %v", err)
	}
	if stats.TotalProcessed != 7 {
		t.Errorf("Expected 7 processed, got %d", stats.TotalProcessed)
	}
}

func TestExportEndpoint(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export-data/csv", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Expected text/csv content type, got %s", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "deforestation_export.csv") {
		t.Errorf("Unexpected content disposition %s", got)
	}
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	handler := newTestHandler(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export-data/xml", nil)
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown format, got %d", w.Code)
	}
}
