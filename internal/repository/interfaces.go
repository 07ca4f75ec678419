package repository

import (
	"context"

	"go-deforest-monitor/pkg/models"
)

// RasterRepository resolves scene sources into rasters. A source is a local
// file path, an http(s) URL, or an Azure blob URL.
type RasterRepository interface {
	// FetchRaster retrieves a scene from a source string
	FetchRaster(ctx context.Context, source string) (*models.RasterImage, error)

	// DecodeRaster converts an already-held byte buffer into a raster
	DecodeRaster(data []byte) (*models.RasterImage, error)
}
