package analyzer

import (
	"context"

	"go-deforest-monitor/pkg/models"
)

// SceneAnalyzer runs the full single-image pipeline:
// preprocess, index computation, detection.
type SceneAnalyzer interface {
	Analyze(raster *models.RasterImage, sourceFilename string) (*models.AnalysisResult, error)
	Options() AnalysisOptions
}

// Preprocessor normalizes, resizes, and optionally denoises a raw raster.
// The input is never mutated.
type Preprocessor interface {
	Preprocess(raster *models.RasterImage) (*models.RasterImage, error)
}

// IndexCalculator computes the vegetation index set from a raster.
// Pure function of its input and the configured soil-brightness constant.
type IndexCalculator interface {
	Calculate(raster *models.RasterImage) (*models.VegetationIndexSet, error)
}

// Detector turns an index set into a mask, percentages, and a confidence.
// The threshold detector is the only variant today; a learned-model detector
// would slot in behind the same contract.
type Detector interface {
	Detect(set *models.VegetationIndexSet) (*Detection, error)
	Name() string
}

// RasterLoader reads a scene from disk into a tagged-band raster
type RasterLoader interface {
	LoadRaster(ctx context.Context, path string) (*models.RasterImage, error)
}
