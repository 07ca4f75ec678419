package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries server settings plus the pipeline tuning that the container
// turns into analysis options. Threshold semantics are validated by the
// analyzer at construction; this layer only checks server-level sanity.
type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`

	// Pipeline
	NDVIThreshold   float64       `yaml:"ndvi_threshold"`
	EVIThreshold    float64       `yaml:"evi_threshold"`
	SAVIThreshold   float64       `yaml:"savi_threshold"`
	ForestThreshold float64       `yaml:"forest_threshold"`
	SoilBrightness  float64       `yaml:"soil_brightness"`
	TargetWidth     int           `yaml:"target_width"`
	TargetHeight    int           `yaml:"target_height"`
	Normalization   string        `yaml:"normalization"` // "minmax" or "fixed"
	Resampling      string        `yaml:"resampling"`    // "mitchell", "bilinear", "nearest"
	Denoise         bool          `yaml:"denoise"`
	AlphaAsNIR      bool          `yaml:"alpha_as_nir"`
	Workers         int           `yaml:"workers"`
	BatchTimeout    time.Duration `yaml:"batch_timeout"`

	// Output
	OutputDir    string `yaml:"output_dir"`
	MaskEncoding string `yaml:"mask_encoding"` // "inline", "rle", "base64"

	// Azure blob source (optional)
	AzureAccountName string `yaml:"azure_account_name"`
	AzureAccountKey  string `yaml:"azure_account_key"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Load builds configuration from the environment, overlaid by an optional
// YAML file named in CONFIG_FILE. Environment values win over file values.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.mergeEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		MaxRequestBodySize: 32 * 1024 * 1024, // satellite scenes are large
		NDVIThreshold:      0.2,
		EVIThreshold:       0.2,
		SAVIThreshold:      0.2,
		ForestThreshold:    0.3,
		SoilBrightness:     0.5,
		TargetWidth:        512,
		TargetHeight:       512,
		Normalization:      "fixed",
		Resampling:         "mitchell",
		Denoise:            false,
		AlphaAsNIR:         false,
		Workers:            0, // sequential batches unless configured
		BatchTimeout:       0, // no batch deadline by default
		OutputDir:          "processed_images",
		MaskEncoding:       "inline",
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", c.MaxRequestBodySize)

	c.NDVIThreshold = parseFloatOrDefault("NDVI_THRESHOLD", c.NDVIThreshold)
	c.EVIThreshold = parseFloatOrDefault("EVI_THRESHOLD", c.EVIThreshold)
	c.SAVIThreshold = parseFloatOrDefault("SAVI_THRESHOLD", c.SAVIThreshold)
	c.ForestThreshold = parseFloatOrDefault("FOREST_THRESHOLD", c.ForestThreshold)
	c.SoilBrightness = parseFloatOrDefault("SOIL_BRIGHTNESS", c.SoilBrightness)
	c.TargetWidth = int(parseIntOrDefault("TARGET_WIDTH", int64(c.TargetWidth)))
	c.TargetHeight = int(parseIntOrDefault("TARGET_HEIGHT", int64(c.TargetHeight)))
	c.Normalization = getEnvOrDefault("NORMALIZATION", c.Normalization)
	c.Resampling = getEnvOrDefault("RESAMPLING", c.Resampling)
	c.Denoise = parseBoolOrDefault("DENOISE", c.Denoise)
	c.AlphaAsNIR = parseBoolOrDefault("ALPHA_AS_NIR", c.AlphaAsNIR)
	c.Workers = int(parseIntOrDefault("WORKERS", int64(c.Workers)))
	c.BatchTimeout = parseDurationOrDefault("BATCH_TIMEOUT", c.BatchTimeout)

	c.OutputDir = getEnvOrDefault("OUTPUT_DIR", c.OutputDir)
	c.MaskEncoding = getEnvOrDefault("MASK_ENCODING", c.MaskEncoding)

	c.AzureAccountName = getEnvOrDefault("AZURE_ACCOUNT_NAME", c.AzureAccountName)
	c.AzureAccountKey = getEnvOrDefault("AZURE_ACCOUNT_KEY", c.AzureAccountKey)
}

func (c *Config) validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.BatchTimeout < 0 {
		return fmt.Errorf("BATCH_TIMEOUT must be >= 0 (got %s)", c.BatchTimeout)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
