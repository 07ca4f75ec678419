package container

import (
	"testing"
	"time"

	"go-deforest-monitor/internal/analyzer"
	"go-deforest-monitor/internal/config"
	apperrors "go-deforest-monitor/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		MaxRequestBodySize: 1 << 20,
		NDVIThreshold:      0.2,
		EVIThreshold:       0.2,
		SAVIThreshold:      0.2,
		ForestThreshold:    0.3,
		SoilBrightness:     0.5,
		TargetWidth:        64,
		TargetHeight:       64,
		Normalization:      "fixed",
		Resampling:         "mitchell",
		Workers:            2,
		OutputDir:          t.TempDir(),
		MaskEncoding:       "inline",
	}
}

func TestNewContainerWiresPipeline(t *testing.T) {
	c, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Service == nil || c.Handler == nil {
		t.Fatal("Expected wired service and handler")
	}

	status := c.Service.Status()
	if status.TargetWidth != 64 || status.TargetHeight != 64 {
		t.Errorf("Expected 64x64 target, got %dx%d", status.TargetWidth, status.TargetHeight)
	}
	if status.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", status.Workers)
	}
}

func TestNewContainerRejectsBadMaskEncoding(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaskEncoding = "hex"

	if _, err := New(cfg); err == nil {
		t.Error("Expected error for unknown mask encoding")
	}
}

func TestNewContainerRejectsBadThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.NDVIThreshold = 5

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error for out-of-range threshold")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestBuildOptionsMapsConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Normalization = "minmax"
	cfg.Resampling = "nearest"
	cfg.Denoise = true
	cfg.BatchTimeout = time.Minute

	opts, err := buildOptions(cfg)
	if err != nil {
		t.Fatalf("buildOptions failed: %v", err)
	}
	if opts.Normalization != analyzer.NormalizationMinMax {
		t.Errorf("Expected minmax normalization, got %s", opts.Normalization)
	}
	if opts.Resampling != analyzer.ResamplingNearest {
		t.Errorf("Expected nearest resampling, got %s", opts.Resampling)
	}
	if !opts.Denoise {
		t.Error("Expected denoise enabled")
	}
	if opts.BatchTimeout != time.Minute {
		t.Errorf("Expected 1m batch timeout, got %s", opts.BatchTimeout)
	}
}
