package validation

import (
	"fmt"
	"math"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// RasterLimits defines configurable bounds for raster acceptance
type RasterLimits struct {
	// Bit depth ceiling: samples above this are rejected (16-bit by default)
	MaxSampleValue float64

	// Minimum spectral planes required for index computation
	MinBands int

	// Dimension ceilings, guarding against absurd allocations
	MaxWidth  int
	MaxHeight int
}

// DefaultRasterLimits returns the default raster limits
func DefaultRasterLimits() RasterLimits {
	return RasterLimits{
		MaxSampleValue: 65535.0,
		MinBands:       3,
		MaxWidth:       16384,
		MaxHeight:      16384,
	}
}

// RasterValidator checks a raster against structural invariants before any
// pixel math runs on it
type RasterValidator struct {
	limits RasterLimits
}

// NewRasterValidator creates a raster validator with default limits
func NewRasterValidator() *RasterValidator {
	return &RasterValidator{limits: DefaultRasterLimits()}
}

// NewRasterValidatorWithLimits creates a raster validator with custom limits
func NewRasterValidatorWithLimits(limits RasterLimits) *RasterValidator {
	return &RasterValidator{limits: limits}
}

// Validate checks dimensions, band shapes, band layout, and sample range.
// Returns an invalid_image error for structural problems and an
// unsupported_band_layout error when required visible bands are missing.
func (rv *RasterValidator) Validate(r *models.RasterImage) error {
	if r == nil || len(r.Planes) == 0 {
		return apperrors.NewInvalidImageError("raster has no band data", nil)
	}

	if r.Width <= 0 || r.Height <= 0 {
		return apperrors.NewInvalidImageError(
			fmt.Sprintf("zero-sized dimensions: %dx%d", r.Width, r.Height), nil)
	}
	if r.Width > rv.limits.MaxWidth || r.Height > rv.limits.MaxHeight {
		return apperrors.NewInvalidImageError(
			fmt.Sprintf("dimensions %dx%d exceed limit %dx%d",
				r.Width, r.Height, rv.limits.MaxWidth, rv.limits.MaxHeight), nil)
	}

	if len(r.Planes) < rv.limits.MinBands {
		return apperrors.NewUnsupportedBandLayoutError(
			fmt.Sprintf("got %d bands, need at least %d", len(r.Planes), rv.limits.MinBands), nil)
	}
	for _, band := range []models.Band{models.BandRed, models.BandGreen, models.BandBlue} {
		if _, ok := r.Planes[band]; !ok {
			return apperrors.NewUnsupportedBandLayoutError(
				fmt.Sprintf("missing required %s band", band), nil)
		}
	}

	want := r.Width * r.Height
	for band, plane := range r.Planes {
		if len(plane) != want {
			return apperrors.NewInvalidImageError(
				fmt.Sprintf("band %s has %d samples, expected %d", band, len(plane), want), nil)
		}
		for i, v := range plane {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return apperrors.NewInvalidImageError(
					fmt.Sprintf("band %s has non-finite sample at pixel %d", band, i), nil)
			}
			if v < 0 || v > rv.limits.MaxSampleValue {
				return apperrors.NewInvalidImageError(
					fmt.Sprintf("band %s sample %g at pixel %d outside supported bit depth [0, %g]",
						band, v, i, rv.limits.MaxSampleValue), nil)
			}
		}
	}

	return nil
}
