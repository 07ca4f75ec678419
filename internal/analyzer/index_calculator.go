package analyzer

import (
	"fmt"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// indexCalculator implements IndexCalculator with per-pixel band arithmetic
type indexCalculator struct {
	soilBrightness float64
}

// NewIndexCalculator creates an index calculator with the given SAVI
// soil-brightness constant L
func NewIndexCalculator(soilBrightness float64) IndexCalculator {
	return &indexCalculator{soilBrightness: soilBrightness}
}

// Calculate computes all seven vegetation indices for the raster.
//
// Wherever a denominator is exactly zero the pixel's index value is 0, never
// NaN or Inf; downstream aggregates rely on this. When the raster has no NIR
// plane, NDVI/EVI/GNDVI are computed with Green substituted for NIR and the
// result records them as fallback indices.
func (ic *indexCalculator) Calculate(raster *models.RasterImage) (*models.VegetationIndexSet, error) {
	red, ok := raster.Plane(models.BandRed)
	if !ok {
		return nil, apperrors.NewUnsupportedBandLayoutError("missing red band", nil)
	}
	green, ok := raster.Plane(models.BandGreen)
	if !ok {
		return nil, apperrors.NewUnsupportedBandLayoutError("missing green band", nil)
	}
	blue, ok := raster.Plane(models.BandBlue)
	if !ok {
		return nil, apperrors.NewUnsupportedBandLayoutError("missing blue band", nil)
	}

	n := raster.Pixels()
	if n <= 0 || len(red) != n || len(green) != n || len(blue) != n {
		return nil, apperrors.NewInvalidImageError(
			fmt.Sprintf("band shapes do not match %dx%d raster", raster.Width, raster.Height), nil)
	}

	var fallback []models.IndexName
	nir, hasNIR := raster.Plane(models.BandNIR)
	if !hasNIR {
		// RGB-only approximation: Green stands in for NIR
		nir = green
		fallback = []models.IndexName{models.IndexNDVI, models.IndexEVI, models.IndexGNDVI}
	} else if len(nir) != n {
		return nil, apperrors.NewInvalidImageError("nir band shape does not match raster", nil)
	}

	l := ic.soilBrightness
	ndvi := make([]float64, n)
	evi := make([]float64, n)
	gndvi := make([]float64, n)
	savi := make([]float64, n)
	grvi := make([]float64, n)
	vari := make([]float64, n)
	tgi := make([]float64, n)

	for i := 0; i < n; i++ {
		r, g, b, ir := red[i], green[i], blue[i], nir[i]

		ndvi[i] = safeRatio(ir-r, ir+r)
		evi[i] = safeRatio(2.5*(ir-r), ir+6*r-7.5*b+1)
		gndvi[i] = safeRatio(ir-g, ir+g)
		savi[i] = safeRatio((ir-r)*(1+l), ir+r+l)
		grvi[i] = safeRatio(g-r, g+r)
		vari[i] = safeRatio(g-r, g+r-b)
		tgi[i] = g - 0.39*r - 0.61*b
	}

	return &models.VegetationIndexSet{
		Width:  raster.Width,
		Height: raster.Height,
		Values: map[models.IndexName][]float64{
			models.IndexNDVI:  ndvi,
			models.IndexEVI:   evi,
			models.IndexGNDVI: gndvi,
			models.IndexSAVI:  savi,
			models.IndexGRVI:  grvi,
			models.IndexVARI:  vari,
			models.IndexTGI:   tgi,
		},
		FallbackIndices: fallback,
	}, nil
}

// safeRatio divides num by den, defining a zero denominator as 0
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
