package analyzer

import (
	"go-deforest-monitor/pkg/models"
)

// AnalysisResult is an alias to the shared models.AnalysisResult
type AnalysisResult = models.AnalysisResult

// Detection holds the detector's raw output before it is folded into an
// AnalysisResult by the scene analyzer
type Detection struct {
	Mask                    *models.DeforestationMask
	DeforestationPercentage float64
	ForestPercentage        float64
	Confidence              float64
	DeforestedPixels        int
	ForestPixels            int
	TotalPixels             int
}
