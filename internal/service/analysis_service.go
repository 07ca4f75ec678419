package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-deforest-monitor/internal/analyzer"
	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/internal/logger"
	"go-deforest-monitor/internal/observer"
	"go-deforest-monitor/internal/report"
	"go-deforest-monitor/internal/repository"
	"go-deforest-monitor/pkg/models"
)

// maxRecentResults caps the in-memory export buffer
const maxRecentResults = 200

// AnalysisService is the application facade over the pipeline: single-scene
// analysis, batch runs, status, analytics, and export
type AnalysisService interface {
	AnalyzeSource(ctx context.Context, source string) (*models.AnalysisResult, error)
	AnalyzeBytes(ctx context.Context, filename string, data []byte) (*models.AnalysisResult, error)
	ProcessDirectory(ctx context.Context, dir string) (*models.BatchReport, error)
	Status() models.ProcessorStatus
	Stats() models.ProcessingStats
	Export(format string) (data []byte, contentType string, err error)
}

type analysisService struct {
	repo         repository.RasterRepository
	analyzer     analyzer.SceneAnalyzer
	orchestrator *analyzer.BatchOrchestrator
	serializer   *report.Serializer
	publisher    observer.Subject
	tracker      *StatsTracker

	mu     sync.Mutex
	recent []models.AnalysisResult
}

// NewAnalysisService creates the analysis service
func NewAnalysisService(
	repo repository.RasterRepository,
	sceneAnalyzer analyzer.SceneAnalyzer,
	orchestrator *analyzer.BatchOrchestrator,
	serializer *report.Serializer,
	publisher observer.Subject,
	tracker *StatsTracker,
) AnalysisService {
	return &analysisService{
		repo:         repo,
		analyzer:     sceneAnalyzer,
		orchestrator: orchestrator,
		serializer:   serializer,
		publisher:    publisher,
		tracker:      tracker,
	}
}

// AnalyzeSource fetches and analyzes one scene
func (s *analysisService) AnalyzeSource(ctx context.Context, source string) (*models.AnalysisResult, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: start,
		Source:    source,
	})

	raster, err := s.repo.FetchRaster(ctx, source)
	if err != nil {
		s.publishFailure(ctx, source, start, err)
		return nil, err
	}
	return s.analyzeRaster(ctx, raster, filepath.Base(source), start)
}

// AnalyzeBytes analyzes a scene held in memory
func (s *analysisService) AnalyzeBytes(ctx context.Context, filename string, data []byte) (*models.AnalysisResult, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: start,
		Source:    filename,
	})

	raster, err := s.repo.DecodeRaster(data)
	if err != nil {
		s.publishFailure(ctx, filename, start, err)
		return nil, err
	}
	return s.analyzeRaster(ctx, raster, filename, start)
}

func (s *analysisService) analyzeRaster(ctx context.Context, raster *models.RasterImage, name string, start time.Time) (*models.AnalysisResult, error) {
	result, err := s.analyzer.Analyze(raster, name)
	if err != nil {
		s.publishFailure(ctx, name, start, err)
		return nil, err
	}

	pct := result.DeforestationPercentage
	s.publish(ctx, observer.AnalysisEvent{
		EventType:               observer.AnalysisCompleted,
		Timestamp:               result.Timestamp,
		Source:                  name,
		ProcessingTime:          time.Since(start),
		Success:                 true,
		DeforestationPercentage: &pct,
	})

	s.remember(*result)
	if _, err := s.serializer.SaveResult(result); err != nil {
		logger.WithError(err).WithField("source", name).Warn("Could not save scene report")
	}
	return result, nil
}

// ProcessDirectory runs the batch pipeline over a directory
func (s *analysisService) ProcessDirectory(ctx context.Context, dir string) (*models.BatchReport, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.BatchStarted,
		Timestamp: start,
		Source:    dir,
	})

	batchReport, err := s.orchestrator.ProcessDirectory(ctx, dir)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.BatchCompleted,
			Timestamp:      time.Now(),
			Source:         dir,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.tracker.RecordBatch(batchReport, time.Now())
	for i := range batchReport.Processed {
		s.remember(batchReport.Processed[i])
	}

	if err := s.serializer.SaveResults(batchReport.Processed); err != nil {
		logger.WithError(err).WithField("directory", dir).Warn("Could not save scene reports")
	}
	if _, err := s.serializer.SaveBatchReport(batchReport); err != nil {
		logger.WithError(err).WithField("directory", dir).Warn("Could not save batch report")
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.BatchCompleted,
		Timestamp:      time.Now(),
		Source:         dir,
		ProcessingTime: time.Since(start),
		Success:        true,
	})
	return batchReport, nil
}

// Status describes the configured pipeline
func (s *analysisService) Status() models.ProcessorStatus {
	opts := s.analyzer.Options()
	return models.ProcessorStatus{
		Status:           "active",
		SupportedFormats: analyzer.SupportedExtensions(),
		Indices:          append([]models.IndexName(nil), models.IndexOrder...),
		TargetWidth:      opts.TargetWidth,
		TargetHeight:     opts.TargetHeight,
		Workers:          opts.Workers,
	}
}

// Stats returns the running analytics aggregate
func (s *analysisService) Stats() models.ProcessingStats {
	return s.tracker.Stats()
}

// Export renders the accumulated results in the requested format
func (s *analysisService) Export(format string) ([]byte, string, error) {
	s.mu.Lock()
	snapshot := make([]models.AnalysisResult, len(s.recent))
	copy(snapshot, s.recent)
	s.mu.Unlock()

	switch strings.ToLower(format) {
	case "json":
		data, err := s.serializer.ExportJSON(snapshot)
		return data, "application/json", err
	case "csv":
		data, err := s.serializer.ExportCSV(snapshot)
		return data, "text/csv", err
	default:
		return nil, "", apperrors.NewValidationError("unsupported export format "+format, nil)
	}
}

func (s *analysisService) remember(result models.AnalysisResult) {
	// The export buffer never carries masks; exports summarize via counts
	result.Mask = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, result)
	if len(s.recent) > maxRecentResults {
		s.recent = s.recent[len(s.recent)-maxRecentResults:]
	}
}

func (s *analysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func (s *analysisService) publishFailure(ctx context.Context, source string, start time.Time, err error) {
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		Timestamp:      time.Now(),
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}
