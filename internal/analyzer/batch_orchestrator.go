package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/internal/logger"
	"go-deforest-monitor/pkg/models"
)

// supportedExtensions are the raster formats accepted for batch scans
var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// SupportedExtensions returns the accepted raster file extensions
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// BatchOrchestrator applies the full pipeline over an ordered list of scene
// files. Per-file failures are recorded and never abort sibling files; the
// processed sequence preserves input order.
type BatchOrchestrator struct {
	analyzer SceneAnalyzer
	loader   RasterLoader
	opts     AnalysisOptions
}

// NewBatchOrchestrator creates a batch orchestrator over an analyzer and a
// raster loader
func NewBatchOrchestrator(sceneAnalyzer SceneAnalyzer, loader RasterLoader) *BatchOrchestrator {
	return &BatchOrchestrator{
		analyzer: sceneAnalyzer,
		loader:   loader,
		opts:     sceneAnalyzer.Options(),
	}
}

// ProcessDirectory scans a directory for supported raster files (sorted by
// name) and processes them as one batch
func (bo *BatchOrchestrator) ProcessDirectory(ctx context.Context, dir string) (*models.BatchReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewNotFoundError("cannot read batch directory "+dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isSupportedFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	logger.WithFields(logrus.Fields{
		"directory": dir,
		"files":     len(paths),
	}).Info("Starting batch processing")

	return bo.ProcessBatch(ctx, paths)
}

// ProcessBatch runs the pipeline independently per path. With Workers > 1
// the scenes are processed on a worker pool and merged back in input order
// after all workers finish; the report itself is only ever written by the
// calling goroutine. A batch timeout still emits partial results for scenes
// that completed before the deadline.
func (bo *BatchOrchestrator) ProcessBatch(ctx context.Context, paths []string) (*models.BatchReport, error) {
	if bo.opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bo.opts.BatchTimeout)
		defer cancel()
	}

	results := make([]*models.AnalysisResult, len(paths))
	failures := make([]error, len(paths))

	if bo.opts.Workers > 1 && len(paths) > 1 {
		pool := NewWorkerPool(bo.opts.Workers)
		pool.Start()
		for i, path := range paths {
			i, path := i, path
			pool.Submit(func() {
				results[i], failures[i] = bo.processOne(ctx, path)
			})
		}
		pool.Wait()
		pool.Close()
	} else {
		for i, path := range paths {
			results[i], failures[i] = bo.processOne(ctx, path)
		}
	}

	report := &models.BatchReport{
		Processed: make([]models.AnalysisResult, 0, len(paths)),
		Failed:    make([]models.BatchError, 0),
	}

	var percentages []float64
	for i, path := range paths {
		name := filepath.Base(path)
		if failures[i] != nil {
			logger.WithError(failures[i]).WithField("file", name).Warn("Scene failed during batch")
			report.Failed = append(report.Failed, models.BatchError{
				Filename:  name,
				ErrorKind: apperrors.Kind(failures[i]),
				Message:   failures[i].Error(),
			})
			continue
		}
		report.Processed = append(report.Processed, *results[i])
		percentages = append(percentages, results[i].DeforestationPercentage)
	}

	report.Summary = models.BatchSummary{
		Count:       len(report.Processed),
		FailedCount: len(report.Failed),
	}
	if len(percentages) > 0 {
		report.Summary.MeanDeforestationPercentage = stat.Mean(percentages, nil)
	}

	logger.WithFields(logrus.Fields{
		"processed": report.Summary.Count,
		"failed":    report.Summary.FailedCount,
	}).Info("Batch processing finished")

	return report, nil
}

// processOne loads and analyzes a single scene, honoring the batch deadline
func (bo *BatchOrchestrator) processOne(ctx context.Context, path string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("batch deadline reached before processing "+filepath.Base(path), err)
	}

	raster, err := bo.loader.LoadRaster(ctx, path)
	if err != nil {
		return nil, err
	}
	return bo.analyzer.Analyze(raster, filepath.Base(path))
}

func isSupportedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range supportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
