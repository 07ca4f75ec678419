package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// SceneFetcher retrieves a remote scene and decodes it into a raster
type SceneFetcher interface {
	FetchRaster(ctx context.Context, sceneURL string) (*models.RasterImage, error)
}

// HTTPSceneFetcher implements SceneFetcher over plain HTTP(S)
type HTTPSceneFetcher struct {
	client   *http.Client
	decoder  *FileStore
	maxBytes int64
}

// NewHTTPSceneFetcher creates an HTTP scene fetcher
func NewHTTPSceneFetcher(decoder *FileStore, maxBytes int64) SceneFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPSceneFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		decoder:  decoder,
		maxBytes: maxBytes,
	}
}

// FetchRaster downloads and decodes a scene. Transient server errors are
// retried up to 3 attempts with linear backoff; 4xx responses are not.
func (h *HTTPSceneFetcher) FetchRaster(ctx context.Context, sceneURL string) (*models.RasterImage, error) {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("scene fetch canceled", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		data, retryable, err := h.fetchOnce(ctx, sceneURL)
		if err == nil {
			return h.decoder.DecodeRaster(data)
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, apperrors.NewNetworkError("failed to fetch scene "+sceneURL, lastErr)
}

func (h *HTTPSceneFetcher) fetchOnce(ctx context.Context, sceneURL string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sceneURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "image/tiff, image/png, image/jpeg, image/bmp, */*")
	req.Header.Set("User-Agent", "Go-Deforest-Monitor/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	default:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if h.maxBytes > 0 {
		body = io.LimitReader(resp.Body, h.maxBytes)
	}
	data, err = io.ReadAll(body)
	if err != nil {
		return nil, true, err
	}
	return data, false, nil
}
