package analyzer

import (
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go-deforest-monitor/internal/logger"
	"go-deforest-monitor/pkg/models"
)

// coreAnalyzer implements SceneAnalyzer and orchestrates the pipeline stages
type coreAnalyzer struct {
	opts         AnalysisOptions
	preprocessor Preprocessor
	calculator   IndexCalculator
	detector     Detector
}

// NewSceneAnalyzer creates a scene analyzer with all pipeline stages wired.
// Invalid options fail here, before any image is touched.
func NewSceneAnalyzer(opts AnalysisOptions) (SceneAnalyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	detector, err := NewThresholdDetector(opts)
	if err != nil {
		return nil, err
	}

	return &coreAnalyzer{
		opts:         opts,
		preprocessor: NewPreprocessor(opts),
		calculator:   NewIndexCalculator(opts.SoilBrightness),
		detector:     detector,
	}, nil
}

// NewSceneAnalyzerWith creates a scene analyzer from explicit stages,
// allowing a different detector variant behind the same contract
func NewSceneAnalyzerWith(opts AnalysisOptions, pre Preprocessor, calc IndexCalculator, det Detector) (SceneAnalyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &coreAnalyzer{
		opts:         opts,
		preprocessor: pre,
		calculator:   calc,
		detector:     det,
	}, nil
}

// Options returns the pipeline configuration
func (ca *coreAnalyzer) Options() AnalysisOptions {
	return ca.opts
}

// Analyze runs preprocess, index computation, and detection for one scene
func (ca *coreAnalyzer) Analyze(raster *models.RasterImage, sourceFilename string) (*models.AnalysisResult, error) {
	start := time.Now()

	preprocessed, err := ca.preprocessor.Preprocess(raster)
	if err != nil {
		return nil, err
	}

	set, err := ca.calculator.Calculate(preprocessed)
	if err != nil {
		return nil, err
	}

	detection, err := ca.detector.Detect(set)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		SourceFilename:          sourceFilename,
		DeforestationPercentage: detection.DeforestationPercentage,
		ForestPercentage:        detection.ForestPercentage,
		Confidence:              detection.Confidence,
		TotalPixels:             detection.TotalPixels,
		DeforestedPixels:        detection.DeforestedPixels,
		ForestPixels:            detection.ForestPixels,
		IndexSummaries:          summarizeIndices(set),
		FallbackIndices:         set.FallbackIndices,
		Mask:                    detection.Mask,
		Timestamp:               start,
		ProcessingTimeSec:       time.Since(start).Seconds(),
	}

	logger.WithFields(logrus.Fields{
		"source":                   sourceFilename,
		"detector":                 ca.detector.Name(),
		"deforestation_percentage": result.DeforestationPercentage,
		"confidence":               result.Confidence,
		"processing_time_sec":      result.ProcessingTimeSec,
	}).Debug("Scene analyzed")

	return result, nil
}

// summarizeIndices computes min/max/mean per index plane
func summarizeIndices(set *models.VegetationIndexSet) map[models.IndexName]models.IndexSummary {
	summaries := make(map[models.IndexName]models.IndexSummary, len(set.Values))
	for _, name := range models.IndexOrder {
		plane, ok := set.Values[name]
		if !ok || len(plane) == 0 {
			continue
		}
		summaries[name] = models.IndexSummary{
			Min:  floats.Min(plane),
			Max:  floats.Max(plane),
			Mean: stat.Mean(plane, nil),
		}
	}
	return summaries
}
