package repository

import (
	"context"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/internal/storage"
	"go-deforest-monitor/pkg/models"
	"go-deforest-monitor/pkg/validation"
)

// sceneRepository dispatches to the file store, the HTTP fetcher, or blob
// storage depending on how the source string classifies
type sceneRepository struct {
	files   *storage.FileStore
	fetcher storage.SceneFetcher
	blobs   storage.BlobStore
	sources *validation.SourceValidator
}

// NewSceneRepository creates a raster repository. fetcher and blobs may be
// nil when the corresponding source kinds are not configured.
func NewSceneRepository(files *storage.FileStore, fetcher storage.SceneFetcher, blobs storage.BlobStore) RasterRepository {
	return &sceneRepository{
		files:   files,
		fetcher: fetcher,
		blobs:   blobs,
		sources: validation.NewSourceValidator(),
	}
}

// FetchRaster retrieves a scene from a source string
func (r *sceneRepository) FetchRaster(ctx context.Context, source string) (*models.RasterImage, error) {
	kind, err := r.sources.Classify(source)
	if err != nil {
		return nil, err
	}

	switch kind {
	case validation.SourceKindLocal:
		return r.files.LoadRaster(ctx, r.sources.LocalPath(source))
	case validation.SourceKindHTTP:
		if r.fetcher == nil {
			return nil, apperrors.NewValidationError("remote sources are not enabled", ErrHTTPFetchNotConfigured)
		}
		return r.fetcher.FetchRaster(ctx, source)
	case validation.SourceKindAzureBlob:
		if r.blobs == nil {
			return nil, apperrors.NewValidationError("azure blob sources are not enabled", ErrBlobStorageNotConfigured)
		}
		return r.blobs.GetRaster(ctx, source)
	default:
		return nil, apperrors.NewValidationError("unsupported source "+source, nil)
	}
}

// DecodeRaster converts an in-memory buffer into a raster
func (r *sceneRepository) DecodeRaster(data []byte) (*models.RasterImage, error) {
	return r.files.DecodeRaster(data)
}
