package validation

import (
	"net/url"
	"strings"

	apperrors "go-deforest-monitor/internal/errors"
)

// SourceKind classifies where a scene is fetched from
type SourceKind string

const (
	SourceKindLocal     SourceKind = "local"
	SourceKindHTTP      SourceKind = "http"
	SourceKindAzureBlob SourceKind = "azure_blob"
)

// SourceValidator classifies and validates scene source strings
type SourceValidator struct{}

// NewSourceValidator creates a new source validator
func NewSourceValidator() *SourceValidator {
	return &SourceValidator{}
}

// Classify determines how a source string should be fetched. Anything
// without an http(s) scheme is treated as a local path.
func (sv *SourceValidator) Classify(source string) (SourceKind, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", apperrors.NewValidationError("source must not be empty", nil)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" {
		return SourceKindLocal, nil
	}

	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return "", apperrors.NewValidationError("URL must have a valid host", nil)
		}
		if strings.HasSuffix(parsed.Hostname(), ".blob.core.windows.net") {
			return SourceKindAzureBlob, nil
		}
		return SourceKindHTTP, nil
	case "file":
		return SourceKindLocal, nil
	default:
		return "", apperrors.NewValidationError("unsupported source scheme: "+parsed.Scheme, nil)
	}
}

// LocalPath resolves a local source to a filesystem path, stripping the
// file scheme when present. Plain paths pass through unchanged.
func (sv *SourceValidator) LocalPath(source string) string {
	trimmed := strings.TrimSpace(source)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme != "file" {
		return trimmed
	}
	return parsed.Path
}
