package factory

import (
	"fmt"

	"go-deforest-monitor/internal/analyzer"
	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/internal/storage"
)

// DetectorType identifies a change-detection strategy
type DetectorType string

const (
	// DetectorThreshold is the dual-index threshold rule
	DetectorThreshold DetectorType = "threshold"
	// DetectorCNN is a learned-model detector. Reserved; constructing it
	// returns an error until a model backend is integrated.
	DetectorCNN DetectorType = "cnn"
)

// NewDetector creates a detector of the given type
func NewDetector(detectorType DetectorType, opts analyzer.AnalysisOptions) (analyzer.Detector, error) {
	switch detectorType {
	case DetectorThreshold:
		return analyzer.NewThresholdDetector(opts)
	case DetectorCNN:
		return nil, apperrors.NewConfigurationError("cnn detector is not available in this build", nil)
	default:
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("unknown detector type %q", detectorType), nil)
	}
}

// StorageType identifies a scene source backend
type StorageType string

const (
	StorageLocal StorageType = "local"
	StorageHTTP  StorageType = "http"
	StorageAzure StorageType = "azure"
)

// StorageConfig carries the settings needed to build source backends
type StorageConfig struct {
	AlphaAsNIR       bool
	MaxFetchBytes    int64
	AzureAccountName string
	AzureAccountKey  string
}

// NewFileStore creates the local scene loader
func NewFileStore(cfg StorageConfig) *storage.FileStore {
	return storage.NewFileStore(cfg.AlphaAsNIR)
}

// NewSceneFetcher creates the HTTP scene fetcher
func NewSceneFetcher(cfg StorageConfig, decoder *storage.FileStore) storage.SceneFetcher {
	return storage.NewHTTPSceneFetcher(decoder, cfg.MaxFetchBytes)
}

// NewBlobStore creates the Azure blob backend, or nil when no account is
// configured
func NewBlobStore(cfg StorageConfig, decoder *storage.FileStore) (storage.BlobStore, error) {
	if cfg.AzureAccountName == "" {
		return nil, nil
	}
	return storage.NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, decoder)
}
