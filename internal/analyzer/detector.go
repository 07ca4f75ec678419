package analyzer

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// thresholdDetector implements the dual-index threshold rule: a pixel is
// deforested when its NDVI falls below the primary threshold and at least
// one of EVI/SAVI corroborates below its own threshold. The second opinion
// keeps a single noisy channel from flooding the mask with false positives.
type thresholdDetector struct {
	opts AnalysisOptions
}

// NewThresholdDetector creates the index-threshold detector variant
func NewThresholdDetector(opts AnalysisOptions) (Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &thresholdDetector{opts: opts}, nil
}

// Name returns the detector variant name
func (d *thresholdDetector) Name() string {
	return "dual_index_threshold"
}

// Detect produces the deforestation mask, percentages, and a confidence
// score derived from cross-index agreement. An entirely uniform index set
// (zero variance in every index) yields confidence 0 and percentage 0.
func (d *thresholdDetector) Detect(set *models.VegetationIndexSet) (*Detection, error) {
	ndvi, evi, savi, err := d.requiredPlanes(set)
	if err != nil {
		return nil, err
	}

	n := set.Pixels()
	if n <= 0 || len(ndvi) != n {
		return nil, apperrors.NewProcessingError(
			fmt.Sprintf("index planes do not match %dx%d raster", set.Width, set.Height), nil)
	}

	mask := models.NewDeforestationMask(set.Width, set.Height)

	// A flat scene carries no signal to threshold against. Report nothing
	// deforested with zero confidence instead of classifying on noise.
	if d.isUniform(set) {
		return &Detection{Mask: mask, TotalPixels: n}, nil
	}

	eviTh := d.opts.SecondaryThresholds[models.IndexEVI]
	saviTh := d.opts.SecondaryThresholds[models.IndexSAVI]

	deforested := 0
	forest := 0
	for i := 0; i < n; i++ {
		below := ndvi[i] < d.opts.NDVIThreshold
		corroborated := evi[i] < eviTh || savi[i] < saviTh
		if below && corroborated {
			mask.Bits[i] = true
			deforested++
		}
		if ndvi[i] > d.opts.ForestThreshold {
			forest++
		}
	}

	total := float64(n)
	return &Detection{
		Mask:                    mask,
		DeforestationPercentage: float64(deforested) / total * 100.0,
		ForestPercentage:        float64(forest) / total * 100.0,
		Confidence:              d.agreementConfidence(set, mask),
		DeforestedPixels:        deforested,
		ForestPixels:            forest,
		TotalPixels:             n,
	}, nil
}

func (d *thresholdDetector) requiredPlanes(set *models.VegetationIndexSet) (ndvi, evi, savi []float64, err error) {
	var ok bool
	if ndvi, ok = set.Values[models.IndexNDVI]; !ok {
		return nil, nil, nil, apperrors.NewProcessingError("index set is missing NDVI", nil)
	}
	if evi, ok = set.Values[models.IndexEVI]; !ok {
		return nil, nil, nil, apperrors.NewProcessingError("index set is missing EVI", nil)
	}
	if savi, ok = set.Values[models.IndexSAVI]; !ok {
		return nil, nil, nil, apperrors.NewProcessingError("index set is missing SAVI", nil)
	}
	return ndvi, evi, savi, nil
}

// isUniform reports whether every index plane has zero variance
func (d *thresholdDetector) isUniform(set *models.VegetationIndexSet) bool {
	for _, plane := range set.Values {
		if stat.PopVariance(plane, nil) != 0 {
			return false
		}
	}
	return true
}

// agreementConfidence measures how strongly the full index set backs the
// final mask: the mean, over pixels and indices, of whether each index's own
// threshold decision matches the mask. Always in [0, 1].
func (d *thresholdDetector) agreementConfidence(set *models.VegetationIndexSet, mask *models.DeforestationMask) float64 {
	n := set.Pixels()
	if n == 0 {
		return 0
	}

	agreements := 0
	decisions := 0
	for _, name := range models.IndexOrder {
		plane, ok := set.Values[name]
		if !ok || len(plane) != n {
			continue
		}
		threshold := d.opts.NDVIThreshold
		if name != models.IndexNDVI {
			var known bool
			if threshold, known = d.opts.secondaryThreshold(name); !known {
				continue
			}
		}
		for i := 0; i < n; i++ {
			if (plane[i] < threshold) == mask.Bits[i] {
				agreements++
			}
			decisions++
		}
	}

	if decisions == 0 {
		return 0
	}
	return float64(agreements) / float64(decisions)
}
