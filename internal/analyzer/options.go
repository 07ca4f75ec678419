package analyzer

import (
	"fmt"
	"math"
	"time"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// NormalizationMode selects how the preprocessor rescales bands to [0, 1]
type NormalizationMode string

const (
	// NormalizationMinMax stretches each band by its own min and max
	NormalizationMinMax NormalizationMode = "minmax"
	// NormalizationFixed divides by the bit-depth range of the source
	NormalizationFixed NormalizationMode = "fixed"
)

// ResamplingMode selects the deterministic resize filter
type ResamplingMode string

const (
	ResamplingMitchell ResamplingMode = "mitchell"
	ResamplingBilinear ResamplingMode = "bilinear"
	ResamplingNearest  ResamplingMode = "nearest"
)

// AnalysisOptions provides flexible configuration for the pipeline.
// One options value describes one pipeline configuration; nothing here is
// process-global, so differently tuned pipelines can run side by side.
type AnalysisOptions struct {
	// Detection thresholds. A pixel is deforested when NDVI falls below
	// NDVIThreshold and at least one of EVI/SAVI corroborates below its own
	// secondary threshold.
	NDVIThreshold       float64
	SecondaryThresholds map[models.IndexName]float64
	ForestThreshold     float64

	// SAVI soil-brightness constant L
	SoilBrightness float64

	// Preprocessing
	TargetWidth   int
	TargetHeight  int
	Normalization NormalizationMode
	Resampling    ResamplingMode
	Denoise       bool

	// Batch behavior
	Workers      int
	BatchTimeout time.Duration
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		NDVIThreshold: 0.2,
		SecondaryThresholds: map[models.IndexName]float64{
			models.IndexEVI:   0.2,
			models.IndexSAVI:  0.2,
			models.IndexGNDVI: 0.15,
			models.IndexGRVI:  0.0,
			models.IndexVARI:  0.0,
			models.IndexTGI:   0.0,
		},
		ForestThreshold: 0.3,
		SoilBrightness:  0.5,
		TargetWidth:     512,
		TargetHeight:    512,
		Normalization:   NormalizationFixed,
		Resampling:      ResamplingMitchell,
		Denoise:         false,
		Workers:         0,
		BatchTimeout:    0,
	}
}

// Validate checks thresholds and constants. Any violation is a configuration
// error that fails construction before an image is touched.
func (opts AnalysisOptions) Validate() error {
	if math.IsNaN(opts.NDVIThreshold) || math.IsInf(opts.NDVIThreshold, 0) ||
		opts.NDVIThreshold < -1 || opts.NDVIThreshold > 1 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("NDVI threshold %g outside [-1, 1]", opts.NDVIThreshold), nil)
	}
	if math.IsNaN(opts.ForestThreshold) || math.IsInf(opts.ForestThreshold, 0) ||
		opts.ForestThreshold < -1 || opts.ForestThreshold > 1 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("forest threshold %g outside [-1, 1]", opts.ForestThreshold), nil)
	}
	if math.IsNaN(opts.SoilBrightness) || math.IsInf(opts.SoilBrightness, 0) || opts.SoilBrightness < 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("soil brightness constant %g must be >= 0", opts.SoilBrightness), nil)
	}
	for _, required := range []models.IndexName{models.IndexEVI, models.IndexSAVI} {
		if _, ok := opts.SecondaryThresholds[required]; !ok {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("missing secondary threshold for %s", required), nil)
		}
	}
	for name, th := range opts.SecondaryThresholds {
		if math.IsNaN(th) || math.IsInf(th, 0) {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("secondary threshold for %s is not finite", name), nil)
		}
	}
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("target resolution %dx%d must be positive", opts.TargetWidth, opts.TargetHeight), nil)
	}
	switch opts.Normalization {
	case NormalizationMinMax, NormalizationFixed:
	default:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("unknown normalization mode %q", opts.Normalization), nil)
	}
	switch opts.Resampling {
	case ResamplingMitchell, ResamplingBilinear, ResamplingNearest:
	default:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("unknown resampling mode %q", opts.Resampling), nil)
	}
	if opts.Workers < 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("workers must be >= 0 (got %d)", opts.Workers), nil)
	}
	if opts.BatchTimeout < 0 {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("batch timeout must be >= 0 (got %s)", opts.BatchTimeout), nil)
	}
	return nil
}

// secondaryThreshold returns the configured threshold for a non-primary index
func (opts AnalysisOptions) secondaryThreshold(name models.IndexName) (float64, bool) {
	th, ok := opts.SecondaryThresholds[name]
	return th, ok
}

// cloneThresholds copies the secondary threshold map so builder methods never
// alias the original
func (opts AnalysisOptions) cloneThresholds() map[models.IndexName]float64 {
	out := make(map[models.IndexName]float64, len(opts.SecondaryThresholds))
	for k, v := range opts.SecondaryThresholds {
		out[k] = v
	}
	return out
}

// WithNDVIThreshold returns options with a custom primary threshold
func (opts AnalysisOptions) WithNDVIThreshold(t float64) AnalysisOptions {
	opts.NDVIThreshold = t
	return opts
}

// WithSecondaryThreshold returns options with one secondary threshold replaced
func (opts AnalysisOptions) WithSecondaryThreshold(name models.IndexName, t float64) AnalysisOptions {
	thresholds := opts.cloneThresholds()
	thresholds[name] = t
	opts.SecondaryThresholds = thresholds
	return opts
}

// WithSoilBrightness returns options with a custom SAVI L constant
func (opts AnalysisOptions) WithSoilBrightness(l float64) AnalysisOptions {
	opts.SoilBrightness = l
	return opts
}

// WithTargetSize returns options with a custom target resolution
func (opts AnalysisOptions) WithTargetSize(width, height int) AnalysisOptions {
	opts.TargetWidth = width
	opts.TargetHeight = height
	return opts
}

// WithNormalization returns options with a custom normalization mode
func (opts AnalysisOptions) WithNormalization(mode NormalizationMode) AnalysisOptions {
	opts.Normalization = mode
	return opts
}

// WithDenoise returns options with the denoising pass enabled
func (opts AnalysisOptions) WithDenoise() AnalysisOptions {
	opts.Denoise = true
	return opts
}

// WithWorkers returns options with a parallel batch worker count
func (opts AnalysisOptions) WithWorkers(n int) AnalysisOptions {
	opts.Workers = n
	return opts
}

// WithBatchTimeout returns options with a batch-level deadline
func (opts AnalysisOptions) WithBatchTimeout(d time.Duration) AnalysisOptions {
	opts.BatchTimeout = d
	return opts
}
