package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewValidationError("bad input", nil)
	if err.Error() != "validation: bad input" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}

	cause := errors.New("underlying")
	wrapped := NewProcessingError("pipeline stage failed", cause)
	if wrapped.Error() != "processing: pipeline stage failed (caused by: underlying)" {
		t.Errorf("Unexpected error string: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected wrapped cause to be reachable via errors.Is")
	}
}

func TestIsType(t *testing.T) {
	err := NewInvalidImageError("corrupt", nil)
	if !IsType(err, ErrorTypeInvalidImage) {
		t.Error("Expected invalid_image type match")
	}
	if IsType(err, ErrorTypeTimeout) {
		t.Error("Did not expect timeout type match")
	}

	// Type checks see through wrapping
	wrapped := fmt.Errorf("while loading: %w", err)
	if !IsType(wrapped, ErrorTypeInvalidImage) {
		t.Error("Expected type match through wrapping")
	}

	if IsType(errors.New("plain"), ErrorTypeInternal) {
		t.Error("Plain errors have no app type")
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NewValidationError("v", nil), "validation"},
		{NewInvalidImageError("i", nil), "invalid_image"},
		{NewUnsupportedBandLayoutError("b", nil), "unsupported_band_layout"},
		{NewTimeoutError("t", nil), "timeout"},
		{NewNotFoundError("n", nil), "not_found"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestGetStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("v", nil), http.StatusBadRequest},
		{NewInvalidImageError("i", nil), http.StatusUnprocessableEntity},
		{NewNetworkError("n", nil), http.StatusBadGateway},
		{NewTimeoutError("t", nil), http.StatusGatewayTimeout},
		{NewNotFoundError("n", nil), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := GetStatusCode(tc.err); got != tc.want {
			t.Errorf("GetStatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
