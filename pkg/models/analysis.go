package models

import "time"

// IndexSummary holds per-index aggregate statistics
type IndexSummary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// AnalysisResult is the complete outcome for one processed scene.
// Immutable once produced. The mask travels out-of-band of the default JSON
// shape; the report serializer encodes it explicitly.
type AnalysisResult struct {
	SourceFilename          string                     `json:"source_filename"`
	DeforestationPercentage float64                    `json:"deforestation_percentage"`
	ForestPercentage        float64                    `json:"forest_percentage"`
	Confidence              float64                    `json:"confidence"`
	TotalPixels             int                        `json:"total_pixels"`
	DeforestedPixels        int                        `json:"deforested_pixels"`
	ForestPixels            int                        `json:"forest_pixels"`
	IndexSummaries          map[IndexName]IndexSummary `json:"index_summaries"`
	FallbackIndices         []IndexName                `json:"fallback_indices,omitempty"`
	Mask                    *DeforestationMask         `json:"-"`
	Timestamp               time.Time                  `json:"timestamp"`
	ProcessingTimeSec       float64                    `json:"processing_time_sec"`
}

// BatchError records a per-file failure inside a batch run
type BatchError struct {
	Filename  string `json:"filename"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message,omitempty"`
}

// BatchSummary holds aggregate statistics for a finished batch
type BatchSummary struct {
	Count                       int     `json:"count"`
	FailedCount                 int     `json:"failed_count"`
	MeanDeforestationPercentage float64 `json:"mean_deforestation_percentage"`
}

// BatchReport is the outcome of one orchestrator invocation. Processed
// preserves the input order of the files that succeeded; failures are listed
// separately, never interleaved.
type BatchReport struct {
	Processed []AnalysisResult `json:"processed"`
	Failed    []BatchError     `json:"failed"`
	Summary   BatchSummary     `json:"summary"`
}

// ProcessorStatus describes the configured pipeline
type ProcessorStatus struct {
	Status           string      `json:"status"`
	SupportedFormats []string    `json:"supported_formats"`
	Indices          []IndexName `json:"vegetation_indices_available"`
	TargetWidth      int         `json:"target_width"`
	TargetHeight     int         `json:"target_height"`
	Workers          int         `json:"workers"`
}

// ProcessingStats is the running aggregate maintained across analyses
type ProcessingStats struct {
	TotalProcessed                 int64      `json:"total_processed"`
	TotalFailed                    int64      `json:"total_failed"`
	AverageDeforestationPercentage float64    `json:"average_deforestation_percentage"`
	LastProcessedAt                *time.Time `json:"last_processed_at,omitempty"`
}
