package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

func encodeTestPNG(t *testing.T, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 10, G: 200, B: 30, A: alpha})
	img.Set(1, 0, color.NRGBA{R: 220, G: 40, B: 30, A: alpha})
	img.Set(0, 1, color.NRGBA{R: 10, G: 180, B: 20, A: alpha})
	img.Set(1, 1, color.NRGBA{R: 90, G: 90, B: 90, A: alpha})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRasterBands(t *testing.T) {
	fs := NewFileStore(false)

	raster, err := fs.DecodeRaster(encodeTestPNG(t, 255))
	if err != nil {
		t.Fatalf("DecodeRaster failed: %v", err)
	}

	if raster.Width != 2 || raster.Height != 2 {
		t.Errorf("Expected 2x2 raster, got %dx%d", raster.Width, raster.Height)
	}
	for _, band := range []models.Band{models.BandRed, models.BandGreen, models.BandBlue} {
		plane, ok := raster.Plane(band)
		if !ok {
			t.Errorf("Expected %s band", band)
			continue
		}
		if len(plane) != 4 {
			t.Errorf("Expected 4 samples in %s band, got %d", band, len(plane))
		}
	}
	if raster.HasNIR() {
		t.Error("Opaque image must not grow a NIR band")
	}

	// Opaque PNG samples survive decoding unchanged
	if raster.Planes[models.BandRed][1] != 220 {
		t.Errorf("Expected red sample 220, got %g", raster.Planes[models.BandRed][1])
	}
	if raster.Planes[models.BandGreen][0] != 200 {
		t.Errorf("Expected green sample 200, got %g", raster.Planes[models.BandGreen][0])
	}
}

func TestDecodeRasterAlphaAsNIR(t *testing.T) {
	fs := NewFileStore(true)

	// Non-trivial alpha becomes the NIR plane
	raster, err := fs.DecodeRaster(encodeTestPNG(t, 128))
	if err != nil {
		t.Fatalf("DecodeRaster failed: %v", err)
	}
	if !raster.HasNIR() {
		t.Fatal("Expected alpha channel to be exposed as NIR")
	}
	if raster.BandCount() != 4 {
		t.Errorf("Expected 4 bands, got %d", raster.BandCount())
	}

	// Fully opaque alpha is padding, not signal, even with the flag on
	raster, err = fs.DecodeRaster(encodeTestPNG(t, 255))
	if err != nil {
		t.Fatalf("DecodeRaster failed: %v", err)
	}
	if raster.HasNIR() {
		t.Error("Fully opaque alpha must not become a NIR band")
	}
}

func TestDecodeRasterRejectsGarbage(t *testing.T) {
	fs := NewFileStore(false)

	_, err := fs.DecodeRaster([]byte("not an image"))
	if err == nil {
		t.Fatal("Expected error for undecodable bytes")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidImage) {
		t.Errorf("Expected invalid_image error, got %v", err)
	}
}

func TestLoadRasterFromFile(t *testing.T) {
	fs := NewFileStore(false)

	path := filepath.Join(t.TempDir(), "scene.png")
	if err := os.WriteFile(path, encodeTestPNG(t, 255), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raster, err := fs.LoadRaster(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadRaster failed: %v", err)
	}
	if raster.Pixels() != 4 {
		t.Errorf("Expected 4 pixels, got %d", raster.Pixels())
	}
}

func TestLoadRasterMissingFile(t *testing.T) {
	fs := NewFileStore(false)

	_, err := fs.LoadRaster(context.Background(), "/nonexistent/scene.png")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidImage) {
		t.Errorf("Expected invalid_image error, got %v", err)
	}
}

func TestLoadRasterCanceledContext(t *testing.T) {
	fs := NewFileStore(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.LoadRaster(ctx, "irrelevant.png")
	if err == nil {
		t.Fatal("Expected error for canceled context")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}
