package repository

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/internal/storage"
)

func testSceneBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 30, G: 120, B: 40, A: 255})
	img.Set(1, 1, color.RGBA{R: 130, G: 90, B: 60, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestFetchRasterLocalPath(t *testing.T) {
	repo := NewSceneRepository(storage.NewFileStore(false), nil, nil)

	path := filepath.Join(t.TempDir(), "scene.png")
	if err := os.WriteFile(path, testSceneBytes(t), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raster, err := repo.FetchRaster(context.Background(), path)
	if err != nil {
		t.Fatalf("FetchRaster failed: %v", err)
	}
	if raster.Width != 2 || raster.Height != 2 {
		t.Errorf("Expected 2x2 raster, got %dx%d", raster.Width, raster.Height)
	}
}

func TestFetchRasterFileScheme(t *testing.T) {
	repo := NewSceneRepository(storage.NewFileStore(false), nil, nil)

	path := filepath.Join(t.TempDir(), "scene.png")
	if err := os.WriteFile(path, testSceneBytes(t), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// A file URL must resolve to the same scene as the bare path
	raster, err := repo.FetchRaster(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("FetchRaster failed for file URL: %v", err)
	}
	if raster.Width != 2 || raster.Height != 2 {
		t.Errorf("Expected 2x2 raster, got %dx%d", raster.Width, raster.Height)
	}
}

func TestFetchRasterEmptySource(t *testing.T) {
	repo := NewSceneRepository(storage.NewFileStore(false), nil, nil)

	_, err := repo.FetchRaster(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty source")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestFetchRasterHTTPWithoutFetcher(t *testing.T) {
	repo := NewSceneRepository(storage.NewFileStore(false), nil, nil)

	_, err := repo.FetchRaster(context.Background(), "https://example.com/scene.png")
	if err == nil {
		t.Fatal("Expected error when no fetcher is configured")
	}
	if !errors.Is(err, ErrHTTPFetchNotConfigured) {
		t.Errorf("Expected ErrHTTPFetchNotConfigured, got %v", err)
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestFetchRasterBlobWithoutStore(t *testing.T) {
	repo := NewSceneRepository(storage.NewFileStore(false), nil, nil)

	_, err := repo.FetchRaster(context.Background(), "https://acct.blob.core.windows.net/scenes?blob=a.png")
	if err == nil {
		t.Fatal("Expected error when blob storage is not configured")
	}
	if !errors.Is(err, ErrBlobStorageNotConfigured) {
		t.Errorf("Expected ErrBlobStorageNotConfigured, got %v", err)
	}
}

func TestDecodeRasterDelegatesToFileStore(t *testing.T) {
	repo := NewSceneRepository(storage.NewFileStore(false), nil, nil)

	raster, err := repo.DecodeRaster(testSceneBytes(t))
	if err != nil {
		t.Fatalf("DecodeRaster failed: %v", err)
	}
	if raster.Pixels() != 4 {
		t.Errorf("Expected 4 pixels, got %d", raster.Pixels())
	}
}
