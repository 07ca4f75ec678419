package storage

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// FileStore loads scenes from the local filesystem or raw byte buffers and
// decodes them into tagged-band rasters. Registered decoders cover JPEG,
// PNG, BMP, and TIFF containers.
type FileStore struct {
	// alphaAsNIR interprets a non-trivial alpha channel as a near-infrared
	// plane, the convention used for 4-band RGBA/NRGBA exports
	alphaAsNIR bool
}

// NewFileStore creates a file-backed raster store
func NewFileStore(alphaAsNIR bool) *FileStore {
	return &FileStore{alphaAsNIR: alphaAsNIR}
}

// LoadRaster reads and decodes a scene from a file path
func (fs *FileStore) LoadRaster(ctx context.Context, path string) (*models.RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("context done before loading "+path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewInvalidImageError("cannot open image file "+path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperrors.NewInvalidImageError("cannot decode image file "+path, err)
	}
	return fs.fromImage(img), nil
}

// DecodeRaster decodes a scene from an in-memory byte buffer
func (fs *FileStore) DecodeRaster(data []byte) (*models.RasterImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidImageError("cannot decode image buffer", err)
	}
	return fs.fromImage(img), nil
}

// fromImage converts a decoded image into a raster with explicit band
// semantics. Samples are kept on the 8-bit scale the decoders expose.
func (fs *FileStore) fromImage(img image.Image) *models.RasterImage {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	raster := models.NewRasterImage(width, height)
	red := make([]float64, width*height)
	green := make([]float64, width*height)
	blue := make([]float64, width*height)
	alpha := make([]float64, width*height)

	opaque := true
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			red[i] = float64(r >> 8)
			green[i] = float64(g >> 8)
			blue[i] = float64(b >> 8)
			alpha[i] = float64(a >> 8)
			if a>>8 != 255 {
				opaque = false
			}
			i++
		}
	}

	raster.Planes[models.BandRed] = red
	raster.Planes[models.BandGreen] = green
	raster.Planes[models.BandBlue] = blue
	// A fully opaque alpha channel carries no NIR signal, only padding
	if fs.alphaAsNIR && !opaque {
		raster.Planes[models.BandNIR] = alpha
	}
	return raster
}
